package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"
	"pkt.systems/pslog"
)

// ServiceType is the mDNS service type the display stream is published under.
const ServiceType = "_beyondbrush._tcp"

// Advertise publishes the HTTP server over mDNS until ctx is cancelled.
// addr is the listen address (":8080" or "host:8080").
func Advertise(ctx context.Context, name, addr string) error {
	port, err := portOf(addr)
	if err != nil {
		return err
	}
	host, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("could not get hostname: %w", err)
	}
	if name == "" {
		name = host
	}

	info := []string{"path=/api/stream", "telemetry=/api/telemetry"}
	service, err := mdns.NewMDNSService(name, ServiceType, "", "", port, nil, info)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to start mDNS server: %w", err)
	}

	logger := pslog.Ctx(ctx)
	logger.Info("advertising over mdns", "service", ServiceType, "name", name, "port", port)

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			logger.Warn("mdns shutdown", "err", err)
		}
	}()
	return nil
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return port, nil
}
