// Package rpc mirrors the playback position to another process, e.g. a video
// preview window, over net/rpc.
package rpc

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/rpc"

	"github.com/montage-editor/montage/loop"
	"github.com/montage-editor/montage/playback"
)

type SyncServer struct {
	channel chan playback.Status
}

// Sync delivers a status to the receiver. If the receiver has not consumed
// the previous one yet, the new status is dropped; the next one follows a
// frame later anyway.
func (s *SyncServer) Sync(status playback.Status, reply *int) error {
	loop.TrySend(s.channel, status)
	return nil
}

// Receiver listens on addr and returns the channel the received statuses are
// delivered to, along with the address actually listened on.
func Receiver(addr string) (<-chan playback.Status, net.Addr, error) {
	c := make(chan playback.Status, 1)
	server := rpc.NewServer()
	if err := server.Register(&SyncServer{channel: c}); err != nil {
		return nil, nil, fmt.Errorf("rpc.Register failed: %w", err)
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("net.Listen failed: %w", err)
	}
	go func() {
		defer close(c)
		http.Serve(l, server)
	}()
	return c, l.Addr(), nil
}

// Sender dials the receiver at addr. Statuses sent to the returned channel
// are forwarded until the channel is closed or a call fails.
func Sender(addr string, logger *slog.Logger) (chan<- playback.Status, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpc.DialHTTP failed: %w", err)
	}
	c := make(chan playback.Status, 256)
	go func() {
		defer client.Close()
		for msg := range c {
			var reply int
			if err := client.Call("SyncServer.Sync", msg, &reply); err != nil {
				logger.Error("SyncServer.Sync failed, no longer syncing", "addr", addr, "err", err)
				for range c {
				}
				return
			}
		}
	}()
	return c, nil
}
