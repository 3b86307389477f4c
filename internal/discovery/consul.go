package discovery

import (
	"fmt"

	"github.com/hashicorp/consul/api"

	"study-service/internal/config"
	"study-service/internal/logger"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
	log    *logger.Logger
}

// NewServiceRegistry returns nil when no Consul address is configured.
func NewServiceRegistry(cfg *config.Config, log *logger.Logger) (*ServiceRegistry, error) {
	if cfg.Consul.Address == "" {
		log.Warn("Consul address is empty, service registration is disabled")
		return nil, nil
	}

	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{client: client, config: cfg, log: log}, nil
}

func (sr *ServiceRegistry) serviceID() string {
	return sr.config.Server.ServiceID + "-http"
}

func (sr *ServiceRegistry) Register() error {
	port := 0
	if _, err := fmt.Sscanf(sr.config.Server.Port, "%d", &port); err != nil {
		return fmt.Errorf("invalid HTTP port %q: %w", sr.config.Server.Port, err)
	}

	registration := &api.AgentServiceRegistration{
		ID:      sr.serviceID(),
		Name:    sr.config.Server.ServiceName,
		Port:    port,
		Address: sr.config.Server.ServiceAddress,
		Tags:    []string{"study", "analytics", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", sr.config.Server.ServiceAddress, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %w", err)
	}

	sr.log.Info("Registered service with Consul", "service_id", registration.ID, "port", port)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.serviceID()); err != nil {
		return fmt.Errorf("failed to deregister HTTP service: %w", err)
	}
	return nil
}
