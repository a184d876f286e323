// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webform serves the conversion form over HTTP: one page with the
// source upload, prefix, batch and naming tag inputs, a status scrollback,
// and links to produced archives.
//
// Conversions are serialized; at most one runs at a time regardless of how
// many browsers are connected.
package webform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/csv2shp/internal/convert"
	"github.com/pdiddy/csv2shp/internal/crs"
	"github.com/pdiddy/csv2shp/internal/logging"
	"github.com/pdiddy/csv2shp/internal/observability"
	"github.com/pdiddy/csv2shp/pkg/types"
)

const (
	uploadsDir  = "uploads"
	archivesDir = "archives"

	scrollbackLines = 500

	defaultMaxArchives = 50
)

// Config controls the web form.
type Config struct {
	// DataDir holds uploads (removed after each run) and produced archives.
	DataDir string

	// NamingTags are offered in the tag dropdown; the first is preselected.
	NamingTags []string

	CRS crs.CRS

	// WorkDir is passed through to each conversion.
	WorkDir string

	// MaxUploadBytes caps the request body of POST /convert. Zero means
	// no limit.
	MaxUploadBytes int64

	// Accounts enables HTTP basic auth on every route except /healthz when
	// non-empty.
	Accounts map[string]string

	// MaxArchives is how many produced archives are kept for download. The
	// oldest is deleted from disk once the limit is passed. Zero means 50.
	MaxArchives int
}

// Server holds the form state.
type Server struct {
	cfg     Config
	log     logging.Logger
	metrics *observability.Collector

	// convertMu serializes conversions.
	convertMu sync.Mutex

	scroll *Scrollback

	mu        sync.RWMutex
	downloads map[string]download
	seq       uint64
}

type download struct {
	ID      string
	Name    string
	Path    string
	Created time.Time

	seq uint64
}

// ConvertResponse is the JSON body returned by POST /convert when the
// client asks for JSON.
type ConvertResponse struct {
	Status   types.ConversionStatus `json:"status"`
	Matched  int                    `json:"matched"`
	Total    int                    `json:"total"`
	Download string                 `json:"download,omitempty"`
	Digest   string                 `json:"digest,omitempty"`
	Messages []string               `json:"messages"`
	Error    string                 `json:"error,omitempty"`
}

// New prepares the data directory and returns a Server. metrics may be nil.
func New(cfg Config, log logging.Logger, metrics *observability.Collector) (*Server, error) {
	if len(cfg.NamingTags) == 0 {
		cfg.NamingTags = types.DefaultNamingTags
	}
	if cfg.CRS == (crs.CRS{}) {
		cfg.CRS = crs.Default
	}
	if cfg.MaxArchives <= 0 {
		cfg.MaxArchives = defaultMaxArchives
	}
	for _, d := range []string{uploadsDir, archivesDir} {
		if err := os.MkdirAll(filepath.Join(cfg.DataDir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return &Server{
		cfg:       cfg,
		log:       logging.OrNoop(log),
		metrics:   metrics,
		scroll:    NewScrollback(scrollbackLines),
		downloads: make(map[string]download),
	}, nil
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.SetHTMLTemplate(indexTemplate)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	g := r.Group("/")
	if len(s.cfg.Accounts) > 0 {
		g.Use(gin.BasicAuth(gin.Accounts(s.cfg.Accounts)))
	}
	g.GET("/", s.handleIndex)
	g.POST("/convert", s.handleConvert)
	g.GET("/download/:id", s.handleDownload)
	if s.metrics != nil {
		g.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug(c.Request.Context(), "request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK)
}

func (s *Server) render(c *gin.Context, code int) {
	c.HTML(code, "index", gin.H{
		"CRS":        fmt.Sprintf("%s (%s)", s.cfg.CRS, s.cfg.CRS.Name()),
		"Tags":       s.cfg.NamingTags,
		"DefaultTag": s.cfg.NamingTags[0],
		"Downloads":  s.recentDownloads(),
		"Lines":      s.scroll.Lines(),
	})
}

// respond answers with JSON when the client prefers it, otherwise with the
// form page.
func (s *Server) respond(c *gin.Context, code int, resp ConvertResponse) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(code, resp)
		return
	}
	s.render(c, code)
}

func (s *Server) handleConvert(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	file, err := c.FormFile("source")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.scroll.Append(convert.MsgSourceNotSelected)
			s.respond(c, http.StatusOK, ConvertResponse{
				Status:   types.ConversionCancelled,
				Messages: []string{convert.MsgSourceNotSelected},
			})
			return
		}
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		s.reject(c, code, fmt.Errorf("reading upload: %w", err))
		return
	}

	tag := c.PostForm("tag")
	if tag == "" {
		tag = s.cfg.NamingTags[0]
	}
	if !(types.ConversionConfig{NamingTags: s.cfg.NamingTags}).HasTag(tag) {
		s.reject(c, http.StatusBadRequest, fmt.Errorf("unknown naming tag %q", tag))
		return
	}
	naming := types.Naming{Tag: tag, Batch: c.PostForm("batch")}
	prefix := c.PostForm("prefix")

	id := uuid.New().String()
	upload := filepath.Join(s.cfg.DataDir, uploadsDir, id+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, upload); err != nil {
		s.reject(c, http.StatusInternalServerError, fmt.Errorf("saving upload: %w", err))
		return
	}
	defer os.Remove(upload)

	outDir := filepath.Join(s.cfg.DataDir, archivesDir, id)
	dest := convert.DestinationFunc(func(defaultName string) (string, error) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", err
		}
		return filepath.Join(outDir, defaultName), nil
	})

	var status bytes.Buffer
	fmt.Fprintf(&status, "%s: prefix %q, batch %q, tag %s\n", file.Filename, prefix, naming.Batch, tag)

	s.convertMu.Lock()
	res, err := convert.Run(c.Request.Context(), upload, convert.Options{
		Prefix:  prefix,
		Naming:  naming,
		CRS:     s.cfg.CRS,
		WorkDir: s.cfg.WorkDir,
		Logger:  s.log.With(logging.String("upload", id)),
	}, dest, &status)
	s.convertMu.Unlock()

	s.metrics.ObserveConversion(res.Status, res.Elapsed, res.Matched)
	if err != nil {
		fmt.Fprintf(&status, "conversion failed: %v\n", err)
		s.log.Warn(c.Request.Context(), "conversion failed", logging.String("upload", id), logging.Err(err))
	}
	s.scroll.Append(status.String())

	resp := ConvertResponse{
		Status:   res.Status,
		Matched:  res.Matched,
		Total:    res.Total,
		Digest:   res.Digest,
		Messages: splitLines(status.String()),
	}
	code := http.StatusOK
	switch {
	case err != nil:
		os.RemoveAll(outDir)
		resp.Error = err.Error()
		code = http.StatusUnprocessableEntity
	case res.Status.Wrote():
		s.addDownload(c.Request.Context(), download{ID: id, Name: filepath.Base(res.Archive), Path: res.Archive, Created: time.Now()})
		resp.Download = "/download/" + id
	default:
		os.RemoveAll(outDir)
	}
	s.respond(c, code, resp)
}

func (s *Server) reject(c *gin.Context, code int, err error) {
	s.scroll.Append("error: " + err.Error())
	s.log.Warn(c.Request.Context(), "convert request rejected", logging.Err(err))
	s.respond(c, code, ConvertResponse{
		Status: types.ConversionFailed,
		Error:  err.Error(),
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	s.mu.RLock()
	d, ok := s.downloads[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.String(http.StatusNotFound, "archive not found")
		return
	}
	c.FileAttachment(d.Path, d.Name)
}

// addDownload registers d and evicts the oldest archives beyond
// cfg.MaxArchives, removing their directories.
func (s *Server) addDownload(ctx context.Context, d download) {
	s.mu.Lock()
	s.seq++
	d.seq = s.seq
	s.downloads[d.ID] = d
	var evicted []download
	for len(s.downloads) > s.cfg.MaxArchives {
		oldest := d
		for _, o := range s.downloads {
			if o.seq < oldest.seq {
				oldest = o
			}
		}
		delete(s.downloads, oldest.ID)
		evicted = append(evicted, oldest)
	}
	s.mu.Unlock()

	for _, o := range evicted {
		if err := os.RemoveAll(filepath.Dir(o.Path)); err != nil {
			s.log.Warn(ctx, "removing evicted archive", logging.String("id", o.ID), logging.Err(err))
		}
	}
}

// recentDownloads returns the produced archives, newest first.
func (s *Server) recentDownloads() []download {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]download, 0, len(s.downloads))
	for _, d := range s.downloads {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range bytes.Split([]byte(s), []byte("\n")) {
		if len(line) > 0 {
			out = append(out, string(line))
		}
	}
	return out
}
