// Package loader turns DICOM files on disk into the instances the
// comparison core consumes.
package loader

import (
	"crypto/md5"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/diff"
)

// Loader reads a file or directory of DICOM files into instances with the
// hierarchy identity fields populated. Pixel data is never loaded.
type Loader struct {
	dict    *tag.Dictionary
	pattern glob.Glob
	log     *slog.Logger
}

// Option configures a Loader
type Option func(*Loader) error

// WithPattern restricts the directory crawl to file names matching a glob
// pattern, e.g. "*.dcm"
func WithPattern(pattern string) Option {
	return func(l *Loader) error {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		l.pattern = g
		return nil
	}
}

// WithLogger sets the progress logger
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) error {
		l.log = log
		return nil
	}
}

// New creates a Loader resolving tags against dict
func New(dict *tag.Dictionary, opts ...Option) (*Loader, error) {
	l := &Loader{
		dict: dict,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Load reads every DICOM file under path (a single file or a directory,
// walked in lexical order) into instances. Unreadable or structurally
// invalid data fails the whole load; nothing is partially ingested.
func (l *Loader) Load(path string) ([]*diff.Instance, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &diff.LoadError{Path: path, Err: err}
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if l.pattern != nil && !l.pattern.Match(d.Name()) {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, &diff.LoadError{Path: path, Err: err}
		}
	} else {
		files = []string{path}
	}

	var instances []*diff.Instance
	for i, fp := range files {
		if !dicom.IsDICOM(fp) {
			l.log.Debug("skipping non-DICOM file", "path", fp)
			continue
		}
		inst, err := l.loadFile(fp)
		if err != nil {
			return nil, &diff.LoadError{Path: fp, Err: err}
		}
		if inst == nil {
			continue // DICOMDIR index
		}
		instances = append(instances, inst)
		l.log.Debug("loaded instance", "path", fp, "count", i+1, "total", len(files))
	}

	if len(instances) == 0 {
		return nil, &diff.LoadError{Path: path, Err: fmt.Errorf("no valid DICOM files found")}
	}
	l.log.Info("loaded instances", "path", path, "instances", len(instances))
	return instances, nil
}

// loadFile parses one file into an instance, or nil for DICOMDIR indexes
func (l *Loader) loadFile(path string) (*diff.Instance, error) {
	ds, err := dicom.ReadFile(path, dicom.WithDictionary(l.dict), dicom.StopBeforePixels())
	if err != nil {
		return nil, err
	}

	if ds.StringValue(tag.MediaStorageSOPClassUID) == dicom.MediaStorageDirectoryStorage {
		return nil, nil
	}

	sopUID := ds.StringValue(tag.SOPInstanceUID)
	if sopUID == "" {
		sopUID = ds.StringValue(tag.MediaStorageSOPInstanceUID)
	}
	if sopUID == "" {
		// Deterministic synthetic identity for files missing their UID
		sopUID = hashUUID(path)
	}

	studyDate := ds.StringValue(tag.StudyDate)
	if studyDate == "" {
		studyDate = "20000101"
	}
	studyTime := strings.SplitN(ds.StringValue(tag.StudyTime), ".", 2)[0]
	if studyTime == "" {
		studyTime = "120000"
	}

	return &diff.Instance{
		SOPInstanceUID: sopUID,
		Number:         ds.IntValue(tag.InstanceNumber, 1),

		PatientID:   ds.StringValue(tag.PatientID),
		PatientName: SimplifyName(strings.ToLower(defaulted(ds.StringValue(tag.PatientName), "unknown"))),

		StudyUID:         ds.StringValue(tag.StudyInstanceUID),
		StudyDescription: SimplifyDescription(defaulted(ds.StringValue(tag.StudyDescription), "unknown")),
		StudyDateTime:    studyDate + "." + studyTime,

		SeriesUID:         ds.StringValue(tag.SeriesInstanceUID),
		SeriesNumber:      ds.IntValue(tag.SeriesNumber, 1),
		Modality:          defaulted(ds.StringValue(tag.Modality), "unknown"),
		SeriesDescription: SimplifyDescription(defaulted(ds.StringValue(tag.SeriesDescription), "unknown")),

		Attrs: ds,
	}, nil
}

func defaulted(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// hashUUID derives a stable UUID from a value by hashing it
func hashUUID(value string) string {
	sum := md5.Sum([]byte(value))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return ""
	}
	return id.String()
}
