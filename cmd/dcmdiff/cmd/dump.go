package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
)

// NewDumpCmd is a command to print a parsed DICOM dataset
func NewDumpCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "parse one DICOM file and print its attributes",
		Long:  "parse one DICOM file and print its attributes as text or JSON, pixel data omitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			path, _ := cmd.Flags().GetString("file")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			path = strings.TrimPrefix(path, "file://")
			switch path {
			case "":
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			case "-":
				in = os.Stdin
			default:
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open file: %v", err)
				}
				in = f
				defer f.Close()
			}

			dataset, err := dicom.Parse(in,
				dicom.WithDictionary(tag.NewDictionary()),
				dicom.StopBeforePixels(),
			)
			if err != nil {
				return fmt.Errorf("failed to parse: %w", err)
			}
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text": // Dataset prints nicely out of the box
				fmt.Println(dataset)
			default: // Dataset is also JSON serializable out of the box
				j, err := json.Marshal(dataset)
				if err != nil {
					return err
				}
				os.Stdout.Write(j)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path to dump ('-' for stdin)")
	pf.StringP("format", "o", "json", "output format (text|json)")
	return cmd
}
