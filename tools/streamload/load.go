package main

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// loadConfig parameters of a stream load run.
type loadConfig struct {
	URL         string
	Connections int
	Duration    time.Duration
	RampUp      time.Duration
	Report      time.Duration
}

// stats counters shared by all subscriber goroutines.
type stats struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	events      atomic.Int64
	heartbeats  atomic.Int64
}

// summary point-in-time copy of stats.
type summary struct {
	Connected   int64
	ConnectErrs int64
	StreamErrs  int64
	Events      int64
	Heartbeats  int64
	Elapsed     time.Duration
}

func (s *stats) snapshot(elapsed time.Duration) summary {
	return summary{
		Connected:   s.connected.Load(),
		ConnectErrs: s.connectErrs.Load(),
		StreamErrs:  s.streamErrs.Load(),
		Events:      s.events.Load(),
		Heartbeats:  s.heartbeats.Load(),
		Elapsed:     elapsed,
	}
}

// EventsPerSecond trade events received per second over the run.
func (s summary) EventsPerSecond() float64 {
	elapsed := s.Elapsed
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	return float64(s.Events) / elapsed.Seconds()
}

func newClient(conns int) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     conns + 100,
			MaxIdleConns:        conns + 100,
			MaxIdleConnsPerHost: conns + 100,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

// rampInterval spreads connection starts; large runs default to one second per 500 connections.
func rampInterval(cfg loadConfig) time.Duration {
	ramp := cfg.RampUp
	if ramp == 0 && cfg.Connections > 100 {
		ramp = max(time.Duration(cfg.Connections/500)*time.Second, time.Second)
	}
	if ramp <= 0 || cfg.Connections <= 0 {
		return 0
	}
	return ramp / time.Duration(cfg.Connections)
}

// runLoad opens cfg.Connections trade stream subscribers and counts what they receive until ctx is done
// or cfg.Duration elapses.
func runLoad(ctx context.Context, l *zap.Logger, client *http.Client, cfg loadConfig) summary {
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	var (
		st    stats
		wg    sync.WaitGroup
		start = time.Now()
	)

	if cfg.Report > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Report)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s := st.snapshot(time.Since(start))
					l.Info("status",
						zap.Int64("connected", s.Connected),
						zap.Int64("connect_errs", s.ConnectErrs),
						zap.Int64("stream_errs", s.StreamErrs),
						zap.Int64("events", s.Events),
						zap.Duration("elapsed", s.Elapsed.Truncate(time.Second)))
				}
			}
		}()
	}

	interval := rampInterval(cfg)
	for i := 0; i < cfg.Connections && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				continue
			case <-time.After(interval):
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			subscribe(ctx, client, cfg.URL, &st)
		}()
	}

	wg.Wait()
	return st.snapshot(time.Since(start))
}

func subscribe(ctx context.Context, client *http.Client, url string, st *stats) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		st.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		st.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		st.connectErrs.Add(1)
		return
	}
	st.connected.Add(1)

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				st.streamErrs.Add(1)
			}
			return
		}

		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, ":"):
			st.heartbeats.Add(1)
		case line == "event: trade":
			st.events.Add(1)
		}
	}
}
