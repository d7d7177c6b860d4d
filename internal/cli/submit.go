package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/platform"
)

var (
	submitName        string
	submitDescription string
	submitTags        []string
	submitKind        string
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Submit an audio or image file to the platform",
	Long: `Submit a local file for moderation. The asset kind is inferred from
the file extension unless --kind is given. The created record starts in
the pending state and is tracked by the refresh loop.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "Display name (default: file name without extension)")
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "Asset description")
	submitCmd.Flags().StringSliceVar(&submitTags, "tags", nil, "Comma-separated tags for the local record")
	submitCmd.Flags().StringVar(&submitKind, "kind", "", "Asset kind: audio or image (default: by extension)")
}

var audioExts = map[string]bool{".mp3": true, ".ogg": true, ".wav": true, ".flac": true}

func inferKind(path string) (platform.Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if audioExts[ext] {
		return platform.KindAudio, nil
	}
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return platform.KindImage, nil
	}
	return "", fmt.Errorf("cannot infer asset kind from %q, pass --kind", ext)
}

func readPayload(path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return payload, nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	path := args[0]

	var kind platform.Kind
	if submitKind != "" {
		kind = platform.Kind(submitKind)
		if !kind.Valid() {
			return fmt.Errorf("invalid kind %q, want audio or image", submitKind)
		}
	} else {
		k, err := inferKind(path)
		if err != nil {
			return err
		}
		kind = k
	}

	payload, err := readPayload(path)
	if err != nil {
		return err
	}

	name := submitName
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	asset, err := orch.SubmitAsset(cmd.Context(), platform.SubmitRequest{
		Payload:     payload,
		Filename:    filepath.Base(path),
		Kind:        kind,
		Name:        name,
		Description: submitDescription,
	}, submitTags)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	fmt.Printf("Submitted %s as %s asset %s (status: %s)\n", path, kind, asset.ID, asset.Status)
	return nil
}
