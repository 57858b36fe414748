package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/12344-munna/order-handler/pkg/tls"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-southeast-1"`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	OrderTableName   string `envconfig:"ORDER_TABLE_NAME" default:"pending-orders-table"`

	// Messenger platform settings. VerifyToken is the shared secret echoed
	// back during the webhook handshake; AdminPSID is the page-scoped id of
	// the store admin allowed to run inventory commands.
	VerifyToken     string `envconfig:"VERIFY_TOKEN" required:"true"`
	PageAccessToken string `envconfig:"PAGE_ACCESS_TOKEN" required:"true"`
	AdminPSID       string `envconfig:"ADMIN_PSID" required:"true"`
	GraphAPIBase    string `envconfig:"GRAPH_API_BASE" default:"https://graph.facebook.com/v17.0"`

	// Kafka is optional; an empty broker list disables the event feed.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode bool   `envconfig:"LOCAL_MODE" default:"false"`

	TLS tls.TLSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
