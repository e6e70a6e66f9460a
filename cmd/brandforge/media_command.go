package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"brandforge/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Interact with the media generation API",
	}
	cmd.AddCommand(newMediaRenderCommand(ctx))
	return cmd
}

func newMediaRenderCommand(ctx *commandContext) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "render <prompt>",
		Short: "Generate an image or video from a prompt and print its URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mediaKind media.Kind
			switch kind {
			case "image":
				mediaKind = media.KindImage
			case "video":
				mediaKind = media.KindVideo
			default:
				return fmt.Errorf("kind must be image or video, got %q", kind)
			}

			client, err := ctx.mediaClient()
			if err != nil {
				return err
			}
			url, err := client.Generate(cmd.Context(), mediaKind, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "image", "Media kind to generate (image, video)")
	return cmd
}
