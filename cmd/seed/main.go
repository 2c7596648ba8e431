package main

import (
	"context"
	"flag"
	"log"
	"time"

	"postboard/internal/client"
	"postboard/internal/form"
	"postboard/internal/post"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	base := flag.String("url", "", "API base URL (default $POSTBOARD_URL or http://localhost:3000)")
	token := flag.String("token", "", "bearer token for write routes")
	n := flag.Int("n", 20, "number of posts to create")
	imageEvery := flag.Int("image-every", 3, "attach a generated PNG to every n-th post, 0 for none")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	c := client.New(*base, client.WithToken(*token))
	f := form.New(c, nil)

	created := 0
	for i := 1; i <= *n; i++ {
		f.SetValues(form.Values{
			Title:       gofakeit.Sentence(4),
			Description: gofakeit.Paragraph(1, 3, 12, " "),
			Status:      gofakeit.RandomString([]string{string(post.StatusActive), string(post.StatusInactive)}),
			Date:        post.FormatDate(gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())),
		})
		if *imageEvery > 0 && i%*imageEvery == 0 {
			img := form.Image{Name: gofakeit.Word() + ".png", ContentType: "image/png", Data: gofakeit.ImagePng(64, 64)}
			if err := f.SelectImage(img); err != nil {
				log.Printf("seed %d: image: %v", i, err)
			}
		}

		err := f.Submit(ctx, func(ctx context.Context, in post.Input, _ string) error {
			p, err := c.Create(ctx, in)
			if err != nil {
				return err
			}
			log.Printf("created post %s %q status=%s image=%q", p.ID, p.Title, p.Status, p.ImageURL)
			return nil
		})
		if err != nil {
			log.Printf("seed %d: %v", i, err)
			f.Cancel()
			continue
		}
		created++
	}
	log.Printf("seeded %d/%d posts", created, *n)
}
