package main

import (
	"fmt"
	"os"

	"faceoverlay/internal/dto"
	"faceoverlay/internal/overlay"
	"faceoverlay/internal/service/render"
	"faceoverlay/internal/service/tracker"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CLI flags
var (
	frameFlag         string
	facesFlag         string
	outFlag           string
	previewWidthFlag  int
	previewHeightFlag int
	frontFlag         bool
	qualityFlag       int
)

var rootCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw face landmark overlays onto a single JPEG frame",
	Long: `Render reads a JPEG frame and a detection batch (the same JSON accepted by
POST /api/detections) and writes the frame with landmark markers, labels,
bounding boxes and face ids drawn on top.

Examples:
  render --frame frame.jpg --faces faces.json --out annotated.jpg
  render -f frame.jpg -d faces.json -o out.jpg --preview-width 640 --preview-height 480 --front`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.Flags().StringVarP(&frameFlag, "frame", "f", "", "JPEG frame to annotate")
	rootCmd.Flags().StringVarP(&facesFlag, "faces", "d", "", "Detection batch JSON file")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "annotated.jpg", "Output JPEG path")
	rootCmd.Flags().IntVar(&previewWidthFlag, "preview-width", 0, "Detector preview width when the batch omits it")
	rootCmd.Flags().IntVar(&previewHeightFlag, "preview-height", 0, "Detector preview height when the batch omits it")
	rootCmd.Flags().BoolVar(&frontFlag, "front", false, "Mirror horizontally for a front-facing camera")
	rootCmd.Flags().IntVarP(&qualityFlag, "quality", "q", 90, "JPEG quality (1-100)")
	rootCmd.MarkFlagRequired("frame")
	rootCmd.MarkFlagRequired("faces")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	frame, err := os.ReadFile(frameFlag)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	raw, err := os.ReadFile(facesFlag)
	if err != nil {
		return fmt.Errorf("read detections: %w", err)
	}
	var batch dto.DetectionBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return fmt.Errorf("decode detections: %w", err)
	}
	if batch.PreviewWidth == 0 && batch.PreviewHeight == 0 {
		batch.PreviewWidth = previewWidthFlag
		batch.PreviewHeight = previewHeightFlag
	}
	if batch.Facing == "" && frontFlag {
		batch.Facing = dto.FacingFront
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	ov := overlay.New()
	added, _ := tracker.New(ov).Apply(&batch)

	out, err := render.NewMatRenderer(qualityFlag).Render(frame, ov)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFlag, out, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Rendered %d face(s) to %s\n", added, outFlag)
	return nil
}
