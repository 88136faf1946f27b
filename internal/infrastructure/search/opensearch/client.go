package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Client wraps the OpenSearch connection used by the clause index.
type Client struct {
	os     *opensearchgo.Client
	prefix string
	logger logging.Logger
}

// NewClient connects to the cluster and verifies it responds.
func NewClient(cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch.addresses is required")
	}

	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	os, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "opensearch client")
	}

	client := &Client{os: os, prefix: cfg.IndexPrefix, logger: log.Named("opensearch")}
	if err := client.Healthy(context.Background()); err != nil {
		return nil, err
	}
	log.Info("opensearch connected", logging.Any("addresses", cfg.Addresses))
	return client, nil
}

// Healthy pings the cluster.
func (c *Client) Healthy(ctx context.Context) error {
	req := opensearchapi.PingRequest{}
	resp, err := req.Do(ctx, c.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeUnavailable, "opensearch ping")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeUnavailable, "opensearch ping: %s", resp.Status())
	}
	return nil
}

func (c *Client) indexName(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "-" + name
}
