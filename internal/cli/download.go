package cli

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/avasquez/canvasagent/pkg/downloader"
)

var (
	downloadCourseIDs []int64
	downloadSkip      bool
	downloadUpload    bool
	downloadRoot      string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download course material from Canvas",
	Long: `Download course files and module attachments into a local folder
tree, one folder per course. With --upload the supported files are also
pushed into one OpenAI vector store per course.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Int64SliceVar(&downloadCourseIDs, "courses", nil, "course ids to download (default: all active courses)")
	downloadCmd.Flags().BoolVar(&downloadSkip, "skip-download", false, "skip downloading and upload existing files")
	downloadCmd.Flags().BoolVar(&downloadUpload, "upload", false, "upload downloaded files to OpenAI vector stores")
	downloadCmd.Flags().StringVar(&downloadRoot, "root", "", "download root directory (default: from config)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	app, err := loadApp(true)
	if err != nil {
		return err
	}
	defer app.close()

	log := app.log.GetZerolog()

	var oc *openai.Client
	if c, ok := app.openaiClient(); ok {
		oc = &c
	}
	dl, err := downloader.New(app.canvas, oc, log)
	if err != nil {
		return err
	}

	root := downloadRoot
	if root == "" {
		root = app.cfg.Download.Root
	}
	upload := downloadUpload || downloadSkip || app.cfg.Download.UploadToVectorStore

	report, err := dl.Run(cmd.Context(), downloader.Options{
		CourseIDs:           downloadCourseIDs,
		SkipDownload:        downloadSkip,
		UploadToVectorStore: upload,
		Root:                root,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Courses: %d\n", report.Courses)
	fmt.Printf("Files: %d downloaded, %d skipped, %d failed (of %d)\n",
		report.FilesDownloaded, report.FilesSkipped, report.FilesFailed, report.FilesTotal)
	if upload {
		fmt.Printf("Vector stores: %d created, %d files uploaded, %d failed\n",
			report.VectorStoresCreated, report.FilesUploaded, report.FilesUploadFailed)
	}
	fmt.Printf("Duration: %.1fs\n", report.DurationSeconds)
	if len(report.Errors) > 0 {
		fmt.Printf("Errors: %d (see download_report.json)\n", len(report.Errors))
	}

	return nil
}
