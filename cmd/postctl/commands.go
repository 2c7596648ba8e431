package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"postboard/internal/board"
	"postboard/internal/client"
	"postboard/internal/form"
	"postboard/internal/store"
	"postboard/internal/view"
)

type app struct {
	url   string
	token string
}

func (a *app) board() *board.Board {
	c := client.New(a.url, client.WithToken(a.token))
	return board.New(store.New(c), form.New(c, nil))
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "postctl",
		Short:        "Manage posts on a postboard server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.url, "url", os.Getenv("POSTBOARD_URL"), "API base URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("POSTBOARD_TOKEN"), "bearer token for writes")

	root.AddCommand(newListCmd(a), newGetCmd(a), newCreateCmd(a), newEditCmd(a), newDeleteCmd(a))
	return root
}

func newListCmd(a *app) *cobra.Command {
	var status, from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, optionally filtered by status and date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.board()
			ctx := cmd.Context()
			refreshed := false
			for _, kv := range [][2]string{{"status", status}, {"startDate", from}, {"endDate", to}} {
				if kv[1] == "" {
					continue
				}
				if _, err := b.SetFilter(ctx, kv[0], kv[1]); err != nil {
					return err
				}
				refreshed = true
			}
			if !refreshed {
				if _, err := b.Refresh(ctx); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if err := view.RenderFilters(out, b.Filter()); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return view.RenderList(out, b.Posts())
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active or inactive")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (needs --to)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD, inclusive (needs --from)")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := client.New(a.url, client.WithToken(a.token)).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("post %s not found", args[0])
			}
			return view.RenderPost(cmd.OutOrStdout(), *p)
		},
	}
}

type postFlags struct {
	title, description, status, date, image string
}

func (pf *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.title, "title", "", "post title")
	cmd.Flags().StringVar(&pf.description, "description", "", "post description")
	cmd.Flags().StringVar(&pf.status, "status", "", "active or inactive")
	cmd.Flags().StringVar(&pf.date, "date", "", "date YYYY-MM-DD")
	cmd.Flags().StringVar(&pf.image, "image", "", "path to a JPEG or PNG to upload")
}

// apply copies the flags the user set onto f.
func (pf *postFlags) apply(cmd *cobra.Command, f *form.Form) error {
	for _, name := range []string{"title", "description", "status", "date"} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		if err := f.Set(name, v); err != nil {
			return err
		}
	}
	if pf.image == "" {
		return nil
	}
	img, err := readImage(pf.image)
	if err != nil {
		return err
	}
	return f.SelectImage(img)
}

func readImage(path string) (form.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Image{}, err
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return form.Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

func newCreateCmd(a *app) *cobra.Command {
	pf := &postFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.board()
			if err := pf.apply(cmd, b.Form()); err != nil {
				return err
			}
			if err := b.Submit(cmd.Context()); err != nil {
				return err
			}
			return view.RenderList(cmd.OutOrStdout(), b.Posts())
		},
	}
	pf.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	pf := &postFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a post; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.board()
			if _, err := b.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := b.Edit(args[0]); err != nil {
				return err
			}
			if err := pf.apply(cmd, b.Form()); err != nil {
				return err
			}
			if err := b.Submit(cmd.Context()); err != nil {
				return err
			}
			return view.RenderList(cmd.OutOrStdout(), b.Posts())
		},
	}
	pf.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.board()
			if err := b.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return view.RenderList(cmd.OutOrStdout(), b.Posts())
		},
	}
}
