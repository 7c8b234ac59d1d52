package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/exim-ops/ledgerrecon/internal/ledger"
	"github.com/exim-ops/ledgerrecon/internal/logger"
	"github.com/exim-ops/ledgerrecon/internal/report"
	"github.com/exim-ops/ledgerrecon/internal/storage"
	"github.com/exim-ops/ledgerrecon/internal/workspace"
)

// Multipart form fields accepted by Reconcile.
const (
	FieldFiles        = "files"
	FieldLabels       = "labels"
	FieldCounterparty = "counterparty"
)

const (
	defaultCounterparty = "counterparty"
	multipartMemory     = 8 << 20
)

// Reconcile accepts one ledger file per period plus a label per file and
// responds with the reconciliation workbook. Request shape is validated
// before any file is parsed.
func (s *Server) Reconcile(c *gin.Context) {
	log := logger.FromGin(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.Config.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusBadRequest, ErrCodeUploadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.deps.Config.MaxUploadBytes))
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeValidation, "request must be multipart/form-data")
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	files := form.File[FieldFiles]
	labels := form.Value[FieldLabels]
	counterparty := strings.TrimSpace(c.PostForm(FieldCounterparty))

	if err := ledger.ValidateLabels(labels, len(files)); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	for _, fh := range files {
		if _, err := s.deps.Parsers.ForFile(fh.Filename); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeUnsupportedFormat, err.Error())
			return
		}
	}

	ws, err := workspace.New(s.deps.Config.TempDir)
	if err != nil {
		log.Error().Err(err).Msg("creating workspace")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not allocate workspace")
		return
	}
	defer ws.ReleaseAfter(s.deps.Config.CleanupDelay, log)
	log.Debug().Str("workspace", ws.ID()).Str("dir", ws.Dir()).Int("files", len(files)).Msg("workspace ready")

	ledgers := make([][]ledger.RawRow, len(files))
	for i, fh := range files {
		rows, err := s.readUpload(c, ws, i, fh)
		if err != nil {
			log.Warn().Err(err).Str("file", fh.Filename).Msg("unreadable ledger")
			fail(c, http.StatusBadRequest, ErrCodeUnreadableLedger,
				fmt.Sprintf("could not read %s as a ledger spreadsheet", fh.Filename))
			return
		}
		ledgers[i] = rows
	}

	periods, err := ledger.PairPeriods(ledgers, labels)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	summaries, err := s.deps.Engine.RunMultiPeriod(periods)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, summaries); err != nil {
		log.Error().Err(err).Msg("rendering report")
		fail(c, http.StatusInternalServerError, ErrCodeReport, "could not render reconciliation report")
		return
	}
	data := buf.Bytes()

	if counterparty == "" {
		counterparty = defaultCounterparty
	}
	s.archive(c, log, counterparty, data)

	log.Info().
		Str("counterparty", counterparty).
		Int("periods", len(summaries)).
		Int("bytes", len(data)).
		Msg("reconciliation complete")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, DownloadName(counterparty)))
	c.Data(http.StatusOK, report.ContentType, data)
}

// readUpload stores an uploaded file in the workspace and parses it.
func (s *Server) readUpload(c *gin.Context, ws *workspace.Workspace, index int, fh *multipart.FileHeader) ([]ledger.RawRow, error) {
	dst := ws.Path(fmt.Sprintf("%02d-%s", index+1, fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	rows, err := s.deps.Parsers.ParseFile(dst)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// archive copies the report to storage. Failures only get logged; the
// caller already has the report.
func (s *Server) archive(c *gin.Context, log zerolog.Logger, counterparty string, data []byte) {
	if _, nop := s.deps.Archiver.(storage.NopArchiver); nop {
		return
	}
	key := storage.Key(s.deps.ArchivePrefix, counterparty, logger.GetRequestID(c))
	if err := s.deps.Archiver.Put(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), report.ContentType); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("archiving report failed")
		return
	}
	log.Info().Str("key", key).Msg("report archived")
}

// DownloadName is the attachment file name offered for counterparty.
func DownloadName(counterparty string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, strings.TrimSpace(counterparty))
	if name == "" {
		name = defaultCounterparty
	}
	return name + "-ledger-reconciliation.xlsx"
}
