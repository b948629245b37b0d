package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog"

	"github.com/avasquez/canvasagent/pkg/canvas"
)

// supportedExtensions are the file types the vector store accepts.
var supportedExtensions = map[string]bool{
	".pdf": true, ".txt": true, ".md": true,
	".doc": true, ".docx": true,
	".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true,
	".json": true, ".csv": true,
}

// maxUploadSize is the OpenAI per-file limit.
const maxUploadSize = 512 * 1024 * 1024

// Options selects what one run downloads and uploads.
type Options struct {
	// CourseIDs restricts the run to these courses; empty means every
	// active course.
	CourseIDs []int64

	// SkipDownload uploads already-downloaded files without fetching.
	SkipDownload bool

	// UploadToVectorStore creates one vector store per course folder and
	// uploads the supported files into it.
	UploadToVectorStore bool

	// Root is the local download directory.
	Root string
}

// Downloader bulk-fetches course files into a local tree mirroring the
// Canvas module and files structure.
type Downloader struct {
	canvas      *canvas.Client
	openai      *openai.Client
	logger      zerolog.Logger
	httpClient  *http.Client
	uploadPause time.Duration
}

// New creates a downloader. The OpenAI client may be nil when vector
// store upload is never requested.
func New(canvasClient *canvas.Client, openaiClient *openai.Client, logger zerolog.Logger) (*Downloader, error) {
	if canvasClient == nil {
		return nil, fmt.Errorf("canvas client is required")
	}
	return &Downloader{
		canvas: canvasClient,
		openai: openaiClient,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		uploadPause: 100 * time.Millisecond,
	}, nil
}

// run carries the per-invocation state.
type run struct {
	*Downloader
	opts   Options
	report *Report
}

// Run executes one download and optional upload pass and returns the
// aggregated report.
func (d *Downloader) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Root == "" {
		opts.Root = "file_index"
	}
	if opts.UploadToVectorStore && d.openai == nil {
		return nil, fmt.Errorf("vector store upload requested without an OpenAI client")
	}

	r := &run{Downloader: d, opts: opts, report: &Report{Errors: []FileError{}}}
	start := time.Now()

	if opts.SkipDownload {
		entries, err := os.ReadDir(opts.Root)
		if err != nil || len(entries) == 0 {
			return nil, fmt.Errorf("download directory %s is missing or empty", opts.Root)
		}
	} else {
		if err := r.download(ctx); err != nil {
			return nil, err
		}
	}

	if opts.UploadToVectorStore {
		if err := r.upload(ctx); err != nil {
			return nil, err
		}
	}

	r.report.DurationSeconds = time.Since(start).Seconds()
	if err := writeReport(opts.Root, d.canvas.BaseURL(), r.report); err != nil {
		d.logger.Warn().Err(err).Msg("failed to write download report")
	}
	return r.report, nil
}

// download fetches every selected course's files.
func (r *run) download(ctx context.Context) error {
	courses, err := r.canvas.ListCourses(ctx, "active")
	if err != nil {
		return fmt.Errorf("failed to fetch courses: %w", err)
	}
	if len(r.opts.CourseIDs) > 0 {
		courses = filterCourses(courses, r.opts.CourseIDs)
	}
	if len(courses) == 0 {
		return fmt.Errorf("no courses selected for download")
	}

	if err := os.MkdirAll(r.opts.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create download root: %w", err)
	}

	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.processCourse(ctx, course)
	}
	return nil
}

// processCourse downloads one course's module files and files area.
func (r *run) processCourse(ctx context.Context, course canvas.Course) {
	courseName := sanitizeName(course.Name)
	if courseName == "unnamed" {
		courseName = fmt.Sprintf("Course_%d", course.ID)
	}
	folder := courseName
	if course.CourseCode != "" {
		folder = sanitizeName(course.CourseCode) + "_" + courseName
	}
	coursePath := filepath.Join(r.opts.Root, folder)

	r.logger.Info().Str("course", course.Name).Int64("course_id", course.ID).Msg("processing course")

	modules, err := r.canvas.ListModules(ctx, course.ID)
	if err != nil {
		r.logger.Warn().Err(err).Int64("course_id", course.ID).Msg("failed to list modules")
	}
	for _, module := range modules {
		r.report.Modules++
		moduleName := sanitizeName(module.Name)
		if moduleName == "unnamed" {
			moduleName = fmt.Sprintf("Module_%d", module.ID)
		}
		modulePath := filepath.Join(coursePath, "Modules", moduleName)

		items, err := r.canvas.ListModuleItems(ctx, course.ID, module.ID)
		if err != nil {
			r.logger.Warn().Err(err).Int64("module_id", module.ID).Msg("failed to list module items")
			continue
		}
		for _, item := range items {
			if item.Type != "File" || item.ContentID == 0 {
				continue
			}
			file, err := r.canvas.GetFile(ctx, item.ContentID)
			if err != nil {
				r.logger.Warn().Err(err).Int64("file_id", item.ContentID).Msg("failed to get file info")
				continue
			}
			r.report.FilesTotal++
			dest := filepath.Join(modulePath, sanitizeName(file.DisplayName))
			if err := r.downloadFile(ctx, file, dest); err != nil {
				r.report.FilesFailed++
				r.report.Errors = append(r.report.Errors, FileError{
					Course: courseName,
					Module: moduleName,
					File:   file.DisplayName,
					Error:  err.Error(),
				})
			}
		}
	}

	files, err := r.canvas.ListCourseFiles(ctx, course.ID)
	if err != nil {
		r.logger.Warn().Err(err).Int64("course_id", course.ID).Msg("failed to list course files")
	}
	for _, file := range files {
		r.report.FilesTotal++
		dest := filepath.Join(coursePath, "Files", sanitizeName(file.DisplayName))
		f := file
		if err := r.downloadFile(ctx, &f, dest); err != nil {
			r.report.FilesFailed++
			r.report.Errors = append(r.report.Errors, FileError{
				Course: courseName,
				File:   file.DisplayName,
				Error:  err.Error(),
			})
		}
	}

	r.report.Courses++
}

// downloadFile streams one file to disk, skipping files already present
// with the expected size.
func (r *run) downloadFile(ctx context.Context, file *canvas.File, dest string) error {
	if file.URL == "" {
		return fmt.Errorf("missing download URL")
	}

	if info, err := os.Stat(dest); err == nil && info.Size() == file.Size {
		r.report.FilesSkipped++
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return err
	}

	r.report.FilesDownloaded++
	r.report.TotalSize += file.Size
	return nil
}

// upload creates a vector store per course folder and uploads every
// supported file into it.
func (r *run) upload(ctx context.Context) error {
	entries, err := os.ReadDir(r.opts.Root)
	if err != nil {
		return fmt.Errorf("failed to read download root: %w", err)
	}

	mapping := map[string]*storeMapping{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		courseName := entry.Name()
		files := collectUploadable(filepath.Join(r.opts.Root, courseName))
		if len(files) == 0 {
			continue
		}

		storeID, err := r.createStore(ctx, courseName)
		if err != nil {
			r.logger.Error().Err(err).Str("course", courseName).Msg("failed to create vector store")
			continue
		}
		sm := &storeMapping{VectorStoreID: storeID, Files: []uploadedFile{}}
		mapping[courseName] = sm

		for i, path := range files {
			// Pace consecutive uploads so the files API is not hammered.
			if i > 0 {
				time.Sleep(r.uploadPause)
			}
			fileID, err := r.uploadFile(ctx, storeID, path)
			if err != nil {
				r.report.FilesUploadFailed++
				r.report.Errors = append(r.report.Errors, FileError{
					Course: courseName,
					File:   filepath.Base(path),
					Error:  "vector store upload failed: " + err.Error(),
				})
				continue
			}
			rel, relErr := filepath.Rel(r.opts.Root, path)
			if relErr != nil {
				rel = path
			}
			sm.Files = append(sm.Files, uploadedFile{Path: rel, FileID: fileID})
		}
	}

	if len(mapping) == 0 {
		r.logger.Warn().Msg("no files qualified for vector store upload")
		return nil
	}
	return writeStoreMapping(r.opts.Root, mapping)
}

// createStore creates one vector store named after the course folder.
func (r *run) createStore(ctx context.Context, courseName string) (string, error) {
	name := courseName
	if len(name) > 100 {
		name = name[:100]
	}
	store, err := r.openai.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name: openai.String(name),
	})
	if err != nil {
		return "", err
	}
	r.report.VectorStoresCreated++
	return store.ID, nil
}

// uploadFile uploads one file and attaches it to the vector store.
func (r *run) uploadFile(ctx context.Context, storeID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	file, err := r.openai.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", err
	}

	if _, err := r.openai.VectorStores.Files.New(ctx, storeID, openai.VectorStoreFileNewParams{
		FileID: file.ID,
	}); err != nil {
		return "", err
	}

	r.report.FilesUploaded++
	return file.ID, nil
}

// collectUploadable walks a course folder and returns the files that
// qualify for vector store upload.
func collectUploadable(dir string) []string {
	var files []string
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if canUpload(path, info.Size()) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// canUpload checks the extension and size limits for vector store files.
func canUpload(path string, size int64) bool {
	if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	return size <= maxUploadSize
}

// sanitizeName strips characters that are illegal in file names.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", `"`, "_",
		"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
	)
	cleaned := strings.Trim(replacer.Replace(name), ". ")
	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}

// filterCourses keeps only the courses whose id is in ids.
func filterCourses(courses []canvas.Course, ids []int64) []canvas.Course {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var selected []canvas.Course
	for _, course := range courses {
		if want[course.ID] {
			selected = append(selected, course)
		}
	}
	return selected
}
