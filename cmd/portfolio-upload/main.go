// Command portfolio-upload sends one image with its bilingual metadata to a
// portfolio server.
//
//	portfolio-upload -server http://localhost:8080 -file sunset.jpg \
//	    -title "Coucher de soleil | Sunset" -description "Plage | Beach" \
//	    -tags "mer, soir | sea, evening"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/portfolio/app/client"
)

func main() {
	server := flag.String("server", envOr("PORTFOLIO_SERVER", "http://localhost:8080"), "portfolio server base URL")
	file := flag.String("file", "", "image to upload")
	title := flag.String("title", "", `title as "fr | en"`)
	description := flag.String("description", "", `description as "fr | en"`)
	tags := flag.String("tags", "", `tags as "a, b | c, d"`)
	custom := flag.String("custom", "", `custom data as "fr | en"`)
	shape := flag.String("shape", "json", `metadata wire shape: "json" or "fields"`)
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploader := client.NewUploader(*server, *timeout).WithMetadataShape(client.MetadataShape(*shape))
	img, err := uploader.Upload(ctx, client.UploadInput{
		FilePath:       *file,
		TitleRaw:       *title,
		DescriptionRaw: *description,
		TagsRaw:        *tags,
		CustomRaw:      *custom,
	})
	if err != nil {
		os.Exit(report(err))
	}

	fmt.Printf("Image uploadée avec succès !\n%s\npublic_id=%s %dx%d %s\n",
		img.SecureURL, img.PublicID, img.Width, img.Height, img.Format)
}

// report prints err and returns the exit status.
func report(err error) int {
	var vErr *client.ValidationError
	var sErr *client.ServerError
	switch {
	case errors.As(err, &vErr):
		fmt.Fprintln(os.Stderr, vErr.Msg)
		return 2
	case errors.As(err, &sErr):
		fmt.Fprintln(os.Stderr, sErr.Message)
		return 1
	case errors.Is(err, client.ErrInvalidResponse):
		fmt.Fprintln(os.Stderr, "Réponse du serveur illisible")
		return 1
	case errors.Is(err, client.ErrConnection):
		fmt.Fprintln(os.Stderr, client.ErrConnection.Error())
		return 1
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
