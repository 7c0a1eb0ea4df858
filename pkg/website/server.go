// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package website

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// TemplateRequest is the body of POST /template.
type TemplateRequest struct {
	Template string                 `json:"template"`
	Values   map[string]interface{} `json:"values,omitempty"`
	HTML     bool                   `json:"html,omitempty"`
}

// TemplateResponse carries either the rendered output or the error.
type TemplateResponse struct {
	Output string `json:"output,omitempty"`
	Errors string `json:"errors,omitempty"`
}

type ServerOpts struct {
	ListenAddr      string
	RedirectToHTTPS bool
	// MaxBodySize limits POST /template bodies; unlimited when 0
	MaxBodySize  int64
	TemplateFunc func(TemplateRequest) (TemplateResponse, error)
}

type Server struct {
	opts ServerOpts
}

func NewServer(opts ServerOpts) *Server {
	return &Server{opts}
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.redirectToHTTPS(s.noCacheHandler(s.mainHandler)))
	mux.HandleFunc("/js/", s.redirectToHTTPS(s.noCacheHandler(s.assetHandler)))
	mux.HandleFunc("/examples", s.redirectToHTTPS(s.noCacheHandler(s.corsHandler(s.exampleSetsHandler))))
	mux.HandleFunc("/examples/", s.redirectToHTTPS(s.noCacheHandler(s.corsHandler(s.examplesHandler))))
	// no need for caching as it's a POST
	mux.HandleFunc("/template", s.redirectToHTTPS(s.corsHandler(s.templateHandler)))
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

func (s *Server) Run() error {
	server := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Printf("Listening on http://%s\n", server.Addr)
	return server.ListenAndServe()
}

func (s *Server) mainHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, []byte(Files["templates/index.html"].Content))
}

func (s *Server) assetHandler(w http.ResponseWriter, r *http.Request) {
	file, found := Files[strings.TrimPrefix(r.URL.Path, "/")]
	if !found {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(r.URL.Path, ".css") {
		w.Header().Set("Content-Type", "text/css")
	}
	if strings.HasSuffix(r.URL.Path, ".js") {
		w.Header().Set("Content-Type", "application/javascript")
	}
	s.write(w, []byte(file.Content))
}

func (s *Server) exampleSetsHandler(w http.ResponseWriter, r *http.Request) {
	slimExampleSets := []exampleSet{}

	for _, eg := range exampleSets {
		examples := []Example{}
		for _, example := range eg.Examples {
			examples = append(examples, Example{
				ID:          example.ID,
				DisplayName: example.DisplayName,
			})
		}

		slimExampleSets = append(slimExampleSets, exampleSet{
			ID:          eg.ID,
			DisplayName: eg.DisplayName,
			Description: eg.Description,
			Examples:    examples,
		})
	}

	s.writeJSON(w, slimExampleSets)
}

func (s *Server) examplesHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/examples/")

	for _, eg := range exampleSets {
		for _, example := range eg.Examples {
			if example.ID == id {
				s.writeJSON(w, example)
				return
			}
		}
	}

	s.logError(w, fmt.Errorf("Did not find example: %v", id))
}

func (s *Server) templateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.logError(w, fmt.Errorf("Expected POST request, but was %s", r.Method))
		return
	}

	body := io.Reader(r.Body)
	if s.opts.MaxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		s.logError(w, err)
		return
	}

	var req TemplateRequest
	err = json.Unmarshal(data, &req)
	if err != nil {
		s.logError(w, fmt.Errorf("Unmarshaling request: %s", err))
		return
	}

	resp, err := s.opts.TemplateFunc(req)
	if err != nil {
		s.logError(w, err)
		return
	}

	s.writeJSON(w, resp)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.write(w, []byte("ok"))
}

func (s *Server) logError(w http.ResponseWriter, err error) {
	log.Print(err.Error())

	resp, err := json.Marshal(TemplateResponse{Errors: err.Error()})
	if err != nil {
		fmt.Fprintf(w, "generation error: %s", err.Error())
		return
	}

	s.write(w, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, val interface{}) {
	bs, err := json.Marshal(val)
	if err != nil {
		s.logError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	s.write(w, bs)
}

func (s *Server) write(w http.ResponseWriter, data []byte) {
	w.Write(data) // not fmt.Fprintf!
}

func (s *Server) redirectToHTTPS(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	if !s.opts.RedirectToHTTPS {
		return wrappedFunc
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checkHTTPS := true
		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			if clientIP == "127.0.0.1" {
				checkHTTPS = false
			}
		}

		if checkHTTPS && r.Header.Get(http.CanonicalHeaderKey("x-forwarded-proto")) != "https" {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				host := r.Host
				if len(host) == 0 {
					s.logError(w, fmt.Errorf("expected non-empty Host header"))
					return
				}

				http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
				return
			}

			// Fail if it's not a GET or HEAD since req may have carried body insecurely
			s.logError(w, fmt.Errorf("expected HTTPs connection"))
			return
		}

		wrappedFunc(w, r)
	}
}

var (
	noCacheHeaders = map[string]string{
		"Expires":         time.Unix(0, 0).Format(time.RFC1123),
		"Cache-Control":   "no-cache, private, max-age=0",
		"Pragma":          "no-cache",
		"X-Accel-Expires": "0",
	}
)

func (s *Server) noCacheHandler(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range noCacheHeaders {
			w.Header().Set(k, v)
		}

		wrappedFunc(w, r)
	}
}

func (s *Server) corsHandler(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		wrappedFunc(w, r)
	}
}
