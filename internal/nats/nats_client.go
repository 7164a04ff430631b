package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/dashanwesha/Code-Editor/pkg/logger"
)

type NATSClient struct {
	Conn   *nats.Conn
	logger logger.Logger
}

func NewNATSClient(ctx context.Context, url string) (*NATSClient, error) {
	logg := logger.FromContext(ctx).WithModule("nats")

	nc, err := nats.Connect(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logg.Warnf("disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logg.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{
		Conn:   nc,
		logger: logg,
	}, nil
}

func (c *NATSClient) Close() {
	c.Conn.Close()
}
