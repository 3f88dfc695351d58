package observability

import (
	"cmp"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
)

const defaultCollectorEndpoint = "localhost:4318"

// Collector is the OTLP/HTTP destination and the resource identity shared by
// the meter and tracer providers.
type Collector struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`
	// Endpoint is host:port of the collector's HTTP receiver.
	Endpoint string `mapstructure:"endpoint"`
	// Insecure sends plain HTTP.
	Insecure bool `mapstructure:"insecure"`
}

func localCollector(serviceName string) Collector {
	return Collector{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       defaultCollectorEndpoint,
		Insecure:       true,
	}
}

// Inherit fills blank identity fields from the service section and a blank
// endpoint with the local collector.
func (c *Collector) Inherit(name, version, environment string) {
	c.ServiceName = cmp.Or(c.ServiceName, name)
	c.ServiceVersion = cmp.Or(c.ServiceVersion, version)
	c.Environment = cmp.Or(c.Environment, environment)
	c.Endpoint = cmp.Or(c.Endpoint, defaultCollectorEndpoint)
}

func (c Collector) resource() (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.ServiceVersion),
		attribute.String("deployment.environment", c.Environment),
	))
}
