package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sisu-network/lib/log"
)

const Namespace = "cargo"

// NewRpcServer registers api under Namespace.
func NewRpcServer(api *ApiHandler) (*rpc.Server, error) {
	handler := rpc.NewServer()
	if err := handler.RegisterName(Namespace, api); err != nil {
		return nil, err
	}

	return handler, nil
}

type Server struct {
	handler       *rpc.Server
	gatherer      prometheus.Gatherer
	listenAddress string
	srv           *http.Server
}

// NewServer serves handler at / and, if gatherer is not nil, the metrics at /metrics.
func NewServer(handler *rpc.Server, gatherer prometheus.Gatherer, port int) *Server {
	return &Server{
		handler:       handler,
		gatherer:      gatherer,
		listenAddress: fmt.Sprintf("0.0.0.0:%d", port),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.handler)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Run serves until Stop is called.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return err
	}

	s.srv = &http.Server{Handler: s.Handler()}
	log.Info("Running server at ", s.listenAddress)

	if err := s.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.handler.Stop()
	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}
