package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ptt/boardd/atomfeed"
	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/gate"
	"github.com/ptt/boardd/server"
)

type Stats struct {
	Boards     int `json:"boards"`
	InflightIO int `json:"inflight_io"`
	WaitingIO  int `json:"waiting_io"`
}

func newDebugHandler(boards *bcache.Cache, ioGate *gate.Gate, feeds *atomfeed.Builder) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(`/healthz`, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	router.HandleFunc(`/stats`, func(w http.ResponseWriter, r *http.Request) {
		var st Stats
		st.Boards = boards.Snapshot().Len()
		st.InflightIO, st.WaitingIO = ioGate.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&st)
	})
	router.HandleFunc(`/atom/{brdname:[A-Za-z][0-9a-zA-Z_\.\-]+}.xml`, func(w http.ResponseWriter, r *http.Request) {
		handleBoardAtomFeed(w, r, boards, feeds)
	})
	router.PathPrefix(`/debug/pprof/`).Handler(http.DefaultServeMux)
	return router
}

func handleBoardAtomFeed(w http.ResponseWriter, r *http.Request, boards *bcache.Cache, feeds *atomfeed.Builder) {
	brdname := mux.Vars(r)["brdname"]
	bid := boards.BoardID(brdname)
	if bid == 0 {
		http.NotFound(w, r)
		return
	}
	feed, err := feeds.Build(bid)
	if errors.Is(err, atomfeed.ErrNoBoard) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		logger.Warn("atom feed", zap.String("board", brdname), zap.Error(err))
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	xml.NewEncoder(w).Encode(feed)
}

func serveDebug(ctx context.Context, bind string, h http.Handler) error {
	l, err := server.Listen(bind, 0)
	if err != nil {
		return err
	}
	svr := &http.Server{
		Handler:           h,
		MaxHeaderBytes:    64 * 1024,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		svr.Shutdown(shutdownCtx)
	}()
	logger.Info("debug http listening", zap.String("bind", bind))
	if err := svr.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveHealth answers the standard gRPC health check until ctx is done.
func serveHealth(ctx context.Context, bind string) error {
	l, err := server.Listen(bind, 0)
	if err != nil {
		return err
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		s.GracefulStop()
	}()
	logger.Info("grpc health listening", zap.String("bind", bind))
	if err := s.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
