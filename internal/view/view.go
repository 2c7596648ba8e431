package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"postboard/internal/post"
)

// ImageURL normalises a stored or preview image reference for display.
// Preview handles and absolute URLs pass through; bare relative paths get a
// leading slash. Empty stays empty.
func ImageURL(s string) string {
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "blob:"), strings.HasPrefix(s, "/"), strings.HasPrefix(s, "http"):
		return s
	}
	return "/" + s
}

func StatusLabel(s post.Status) string {
	switch s {
	case post.StatusActive:
		return "Active"
	case post.StatusInactive:
		return "Inactive"
	case "":
		return "All"
	}
	return string(s)
}

func orAny(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderFilters writes the current filter controls.
func RenderFilters(w io.Writer, f post.Filter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tFROM\tTO")
	fmt.Fprintf(tw, "%s\t%s\t%s\n", StatusLabel(f.Status), orAny(f.StartDate), orAny(f.EndDate))
	return tw.Flush()
}

// RenderList writes the posts in the order given.
func RenderList(w io.Writer, posts []post.Post) error {
	noun := "posts"
	if len(posts) == 1 {
		noun = "post"
	}
	if _, err := fmt.Fprintf(w, "%d %s\n", len(posts), noun); err != nil {
		return err
	}
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDATE\tIMAGE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, oneLine(p.Title), StatusLabel(p.Status), orAny(post.FormatDate(p.Date)), orAny(ImageURL(p.ImageURL)))
	}
	return tw.Flush()
}

// RenderPost writes one post in full.
func RenderPost(w io.Writer, p post.Post) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", p.ID)
	fmt.Fprintf(tw, "title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "description:\t%s\n", oneLine(p.Description))
	fmt.Fprintf(tw, "status:\t%s\n", StatusLabel(p.Status))
	fmt.Fprintf(tw, "date:\t%s\n", orAny(post.FormatDate(p.Date)))
	fmt.Fprintf(tw, "image:\t%s\n", orAny(ImageURL(p.ImageURL)))
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
