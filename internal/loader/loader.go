// Package loader walks a directory of quality reports and persists the
// extracted rows as one batch.
package loader

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/qbdaten/qbsync/internal/model"
	"github.com/qbdaten/qbsync/internal/report"
	"github.com/qbdaten/qbsync/internal/store"
)

// Result summarizes one load run.
type Result struct {
	Files   int   `json:"files"`   // files matched by the glob
	Loaded  int   `json:"loaded"`  // files fully extracted
	Skipped int   `json:"skipped"` // files dropped as unparsable or incomplete
	Rows    int64 `json:"rows"`    // rows applied by the upsert
}

// Run processes every file in dir matching glob, strictly sequentially, and
// upserts the complete records as a single batch. A file that cannot be
// parsed or yields an incomplete record is logged and skipped; only store
// failures abort the run. With dryRun set nothing is written and the load
// log is left untouched.
func Run(ctx context.Context, st store.Store, dir, glob string, dryRun bool, log *zap.Logger) (*Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, eris.Wrapf(err, "loader: bad glob pattern %q", glob)
	}

	res := &Result{Files: len(files)}
	var hospitals []model.Hospital

	for _, file := range files {
		h, ok := extractFile(file, log)
		if !ok {
			res.Skipped++
			continue
		}
		hospitals = append(hospitals, *h)
		res.Loaded++
	}

	if dryRun {
		log.Info("dry run, skipping upsert",
			zap.Int("files", res.Files),
			zap.Int("loaded", res.Loaded),
			zap.Int("skipped", res.Skipped),
		)
		return res, nil
	}

	loadID, err := st.StartLoad(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "loader: record load start")
	}

	rows, err := st.UpsertHospitals(ctx, hospitals)
	if err != nil {
		if ferr := st.FailLoad(ctx, loadID, err); ferr != nil {
			log.Warn("could not record load failure", zap.Error(ferr))
		}
		return nil, eris.Wrap(err, "loader: upsert batch")
	}
	res.Rows = rows

	if err := st.CompleteLoad(ctx, loadID, res.Loaded, res.Skipped, rows); err != nil {
		return nil, eris.Wrapf(err, "loader: record load completion %s", loadID)
	}

	log.Info("load complete",
		zap.String("load_id", loadID),
		zap.Int("files", res.Files),
		zap.Int("loaded", res.Loaded),
		zap.Int("skipped", res.Skipped),
		zap.Int64("rows", rows),
	)
	return res, nil
}

// extractFile maps one report file to a row. Every failure mode here is
// non-fatal; the diagnostic is logged and the file is dropped.
func extractFile(file string, log *zap.Logger) (*model.Hospital, bool) {
	doc, err := report.ParseFile(file)
	if err != nil {
		log.Error("could not parse report", zap.String("file", file), zap.Error(err))
		return nil, false
	}

	addr, err := report.ExtractAddress(doc)
	if err != nil {
		log.Error("could not extract address", zap.String("file", file), zap.Error(err))
	}
	ems, err := report.ExtractEmergencyServices(doc)
	if err != nil {
		log.Error("could not extract emergency services", zap.String("file", file), zap.Error(err))
	}
	if addr == nil || ems == nil {
		log.Warn("skipping report: incomplete data", zap.String("file", file))
		return nil, false
	}

	h, err := model.MergeHospital(addr, ems)
	if err != nil {
		log.Warn("skipping report", zap.String("file", file), zap.Error(err))
		return nil, false
	}
	return h, true
}
