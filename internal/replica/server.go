package replica

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homebook/internal/apperr"
	"homebook/internal/auth"
)

// Server hosts the replication endpoint over HTTPS with a self-signed
// certificate generated at startup.
type Server struct {
	addr    string
	session *auth.Session
	merger  *Merger
	log     *zap.Logger

	stop chan struct{}
	srv  *http.Server
}

// NewServer wires the endpoint.
func NewServer(addr string, session *auth.Session, merger *Merger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		session: session,
		merger:  merger,
		log:     log,
		stop:    make(chan struct{}),
	}
}

// Handler builds the HTTP surface. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Run serves until /stop is hit or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	cert, err := selfSignedCertificate()
	if err != nil {
		return fmt.Errorf("replication certificate: %w", err)
	}

	s.srv = &http.Server{
		Addr:      s.addr,
		Handler:   s.Handler(),
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServeTLS("", "")
	}()
	s.log.Info("replication endpoint listening", zap.String("addr", s.addr))

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-s.stop:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// commonHeaders writes the headers every response carries, including
// the Origin reflection for CORS.
func commonHeaders(w http.ResponseWriter, r *http.Request, contentType string) {
	h := w.Header()
	h.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	h.Set("Content-type", contentType)
	h.Set("Pragma", "no-cache")
	h.Set("Cache-control", "no-cache")
	h.Set("Expires", "-1")
	if origin := r.Header.Get("Origin"); origin != "" {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		commonHeaders(w, r, "text/plain; charset=utf-8")
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", "POST,GET,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "X-PINGOTHER,Content-Type")
		h.Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusOK)

	case http.MethodPost:
		s.handleMerge(w, r)

	case http.MethodGet:
		commonHeaders(w, r, "text/plain; charset=utf-8")
		fmt.Fprintln(w, "homebook replication endpoint")

	default:
		commonHeaders(w, r, "text/plain; charset=utf-8")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	commonHeaders(w, r, "text/plain; charset=utf-8")
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	fmt.Fprintln(w, "stopping")
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		commonHeaders(w, r, "text/plain; charset=utf-8")
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := ValidateRequest(body); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		commonHeaders(w, r, "text/plain; charset=utf-8")
		http.Error(w, "decode request: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The token must name the logged-in user; anything else is
	// unauthorised, reported as plain text.
	if !s.session.LoggedIn() || req.Token != s.session.User() {
		commonHeaders(w, r, "text/plain; charset=utf-8")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	resp, err := s.merger.Merge(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	commonHeaders(w, r, "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("write merge response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	commonHeaders(w, r, "text/plain; charset=utf-8")
	status := http.StatusInternalServerError
	if apperr.IsService(err) {
		status = http.StatusBadRequest
	}
	msg := err.Error()
	if msgs := apperr.UserMessages(err); len(msgs) > 0 {
		msg = msgs[0]
	}
	s.log.Warn("replication request failed", zap.Error(err))
	http.Error(w, msg, status)
}

// selfSignedCertificate creates a throwaway TLS identity for the
// lifetime of the process.
func selfSignedCertificate() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "homebook"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
