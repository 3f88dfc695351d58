package eureka

import (
	"strconv"
	"sync"
)

// Defaults applied by NewInstanceConfig.
const (
	DefaultEurekaURL         = "http://localhost:8761"
	DefaultStatus            = "UP"
	DefaultOverriddenStatus  = "UNKNOWN"
	DefaultCountryID         = "1"
	DefaultHeartbeatInterval = 30
	DefaultDataCenterClass   = "com.netflix.appinfo.InstanceInfo$DefaultDataCenterInfo"
	DefaultDataCenterName    = "MyOwn"
)

// AppNamePattern matches the application names the registry accepts in a
// URL path segment.
const AppNamePattern = `^[A-Za-z0-9._-]+$`

// PortConfig is a port number as advertised to the registry, together with
// its enabled flag.
type PortConfig struct {
	Value   string `mapstructure:"value" json:"value"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// NewPort builds a PortConfig from a numeric port.
func NewPort(port int, enabled bool) PortConfig {
	return PortConfig{Value: strconv.Itoa(port), Enabled: enabled}
}

// DataCenterInfo identifies the data center flavour of the instance.
type DataCenterInfo struct {
	ClassName string `mapstructure:"class_name" json:"className"`
	Name      string `mapstructure:"name" json:"name"`
}

// Options describes an instance before defaults are applied. Empty fields
// take their defaults in NewInstanceConfig.
type Options struct {
	EurekaDefaultURL  string          `mapstructure:"default_url" validate:"omitempty,url"`
	HostName          string          `mapstructure:"host_name"`
	AppName           string          `mapstructure:"app_name" validate:"required"`
	IP                string          `mapstructure:"ip" validate:"required"`
	Status            string          `mapstructure:"status"`
	OverriddenStatus  string          `mapstructure:"overridden_status"`
	Port              PortConfig      `mapstructure:"port"`
	SecurePort        *PortConfig     `mapstructure:"secure_port"`
	CountryID         string          `mapstructure:"country_id"`
	DataCenterInfo    *DataCenterInfo `mapstructure:"data_center_info"`
	HomePageURL       string          `mapstructure:"home_page_url"`
	StatusPageURL     string          `mapstructure:"status_page_url"`
	HealthCheckURL    string          `mapstructure:"health_check_url"`
	VipAddress        string          `mapstructure:"vip_address"`
	SecureVipAddress  string          `mapstructure:"secure_vip_address"`
	HeartbeatInterval int             `mapstructure:"heartbeat_interval" validate:"gte=0"`

	DiscoveryStrategy DiscoveryStrategy `mapstructure:"-"`
	InstanceProvider  InstanceProvider  `mapstructure:"-"`
}

// InstanceConfig describes the advertised instance and the registry it
// talks to. It is safe for concurrent use; setters may be called while a
// Client is running and take effect on the next request.
type InstanceConfig struct {
	mu sync.RWMutex

	eurekaDefaultURL  string
	hostName          string
	appName           string
	ip                string
	status            string
	overriddenStatus  string
	port              PortConfig
	securePort        PortConfig
	countryID         string
	dataCenterInfo    DataCenterInfo
	homePageURL       string
	statusPageURL     string
	healthCheckURL    string
	vipAddress        string
	secureVipAddress  string
	heartbeatInterval int

	discoveryStrategy DiscoveryStrategy
	instanceProvider  InstanceProvider
}

// NewInstanceConfig resolves defaults once and returns the config.
// HostName falls back to IP and both VIP addresses fall back to AppName;
// changing IP or AppName afterwards does not re-derive them.
func NewInstanceConfig(opts Options) *InstanceConfig {
	c := &InstanceConfig{
		eurekaDefaultURL:  opts.EurekaDefaultURL,
		hostName:          opts.HostName,
		appName:           opts.AppName,
		ip:                opts.IP,
		status:            opts.Status,
		overriddenStatus:  opts.OverriddenStatus,
		port:              opts.Port,
		countryID:         opts.CountryID,
		homePageURL:       opts.HomePageURL,
		statusPageURL:     opts.StatusPageURL,
		healthCheckURL:    opts.HealthCheckURL,
		vipAddress:        opts.VipAddress,
		secureVipAddress:  opts.SecureVipAddress,
		heartbeatInterval: opts.HeartbeatInterval,
		discoveryStrategy: opts.DiscoveryStrategy,
		instanceProvider:  opts.InstanceProvider,
	}

	if c.eurekaDefaultURL == "" {
		c.eurekaDefaultURL = DefaultEurekaURL
	}
	if c.hostName == "" {
		c.hostName = c.ip
	}
	if c.status == "" {
		c.status = DefaultStatus
	}
	if c.overriddenStatus == "" {
		c.overriddenStatus = DefaultOverriddenStatus
	}
	if opts.SecurePort != nil {
		c.securePort = *opts.SecurePort
	} else {
		c.securePort = NewPort(443, false)
	}
	if c.countryID == "" {
		c.countryID = DefaultCountryID
	}
	if opts.DataCenterInfo != nil {
		c.dataCenterInfo = *opts.DataCenterInfo
	} else {
		c.dataCenterInfo = DataCenterInfo{ClassName: DefaultDataCenterClass, Name: DefaultDataCenterName}
	}
	if c.vipAddress == "" {
		c.vipAddress = c.appName
	}
	if c.secureVipAddress == "" {
		c.secureVipAddress = c.appName
	}
	if c.heartbeatInterval <= 0 {
		c.heartbeatInterval = DefaultHeartbeatInterval
	}
	if c.discoveryStrategy == nil {
		c.discoveryStrategy = NewRandomStrategy()
	}
	return c
}

// InstanceID is HostName:AppName:Port.Value.
func (c *InstanceConfig) InstanceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hostName + ":" + c.appName + ":" + c.port.Value
}

func (c *InstanceConfig) EurekaDefaultURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eurekaDefaultURL
}

func (c *InstanceConfig) SetEurekaDefaultURL(v string) {
	c.mu.Lock()
	c.eurekaDefaultURL = v
	c.mu.Unlock()
}

func (c *InstanceConfig) HostName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hostName
}

func (c *InstanceConfig) SetHostName(v string) {
	c.mu.Lock()
	c.hostName = v
	c.mu.Unlock()
}

func (c *InstanceConfig) AppName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appName
}

func (c *InstanceConfig) SetAppName(v string) {
	c.mu.Lock()
	c.appName = v
	c.mu.Unlock()
}

func (c *InstanceConfig) IP() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ip
}

func (c *InstanceConfig) SetIP(v string) {
	c.mu.Lock()
	c.ip = v
	c.mu.Unlock()
}

func (c *InstanceConfig) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *InstanceConfig) SetStatus(v string) {
	c.mu.Lock()
	c.status = v
	c.mu.Unlock()
}

func (c *InstanceConfig) OverriddenStatus() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overriddenStatus
}

func (c *InstanceConfig) SetOverriddenStatus(v string) {
	c.mu.Lock()
	c.overriddenStatus = v
	c.mu.Unlock()
}

func (c *InstanceConfig) Port() PortConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.port
}

func (c *InstanceConfig) SetPort(v PortConfig) {
	c.mu.Lock()
	c.port = v
	c.mu.Unlock()
}

func (c *InstanceConfig) SecurePort() PortConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.securePort
}

func (c *InstanceConfig) SetSecurePort(v PortConfig) {
	c.mu.Lock()
	c.securePort = v
	c.mu.Unlock()
}

func (c *InstanceConfig) CountryID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.countryID
}

func (c *InstanceConfig) SetCountryID(v string) {
	c.mu.Lock()
	c.countryID = v
	c.mu.Unlock()
}

func (c *InstanceConfig) DataCenterInfo() DataCenterInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataCenterInfo
}

func (c *InstanceConfig) SetDataCenterInfo(v DataCenterInfo) {
	c.mu.Lock()
	c.dataCenterInfo = v
	c.mu.Unlock()
}

func (c *InstanceConfig) HomePageURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.homePageURL
}

func (c *InstanceConfig) SetHomePageURL(v string) {
	c.mu.Lock()
	c.homePageURL = v
	c.mu.Unlock()
}

func (c *InstanceConfig) StatusPageURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusPageURL
}

func (c *InstanceConfig) SetStatusPageURL(v string) {
	c.mu.Lock()
	c.statusPageURL = v
	c.mu.Unlock()
}

func (c *InstanceConfig) HealthCheckURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthCheckURL
}

func (c *InstanceConfig) SetHealthCheckURL(v string) {
	c.mu.Lock()
	c.healthCheckURL = v
	c.mu.Unlock()
}

func (c *InstanceConfig) VipAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vipAddress
}

func (c *InstanceConfig) SetVipAddress(v string) {
	c.mu.Lock()
	c.vipAddress = v
	c.mu.Unlock()
}

func (c *InstanceConfig) SecureVipAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secureVipAddress
}

func (c *InstanceConfig) SetSecureVipAddress(v string) {
	c.mu.Lock()
	c.secureVipAddress = v
	c.mu.Unlock()
}

// HeartbeatInterval is in seconds.
func (c *InstanceConfig) HeartbeatInterval() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.heartbeatInterval
}

func (c *InstanceConfig) SetHeartbeatInterval(seconds int) {
	c.mu.Lock()
	c.heartbeatInterval = seconds
	c.mu.Unlock()
}

func (c *InstanceConfig) DiscoveryStrategy() DiscoveryStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.discoveryStrategy
}

func (c *InstanceConfig) SetDiscoveryStrategy(s DiscoveryStrategy) {
	c.mu.Lock()
	c.discoveryStrategy = s
	c.mu.Unlock()
}

// InstanceProvider returns the fallback provider, or nil when none is set.
func (c *InstanceConfig) InstanceProvider() InstanceProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instanceProvider
}

func (c *InstanceConfig) SetInstanceProvider(p InstanceProvider) {
	c.mu.Lock()
	c.instanceProvider = p
	c.mu.Unlock()
}

// RegistrationPayload builds the body sent on register.
func (c *InstanceConfig) RegistrationPayload() RegistrationRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return RegistrationRequest{
		Instance: RegistrationInstance{
			InstanceID:       c.hostName + ":" + c.appName + ":" + c.port.Value,
			HostName:         c.hostName,
			App:              c.appName,
			IPAddr:           c.ip,
			Status:           c.status,
			OverriddenStatus: c.overriddenStatus,
			Port:             InstancePort{Value: c.port.Value, Enabled: c.port.Enabled},
			SecurePort:       InstancePort{Value: c.securePort.Value, Enabled: c.securePort.Enabled},
			CountryID:        c.countryID,
			DataCenterInfo: InstanceDataCenter{
				Class: c.dataCenterInfo.ClassName,
				Name:  c.dataCenterInfo.Name,
			},
			HomePageURL:      c.homePageURL,
			StatusPageURL:    c.statusPageURL,
			HealthCheckURL:   c.healthCheckURL,
			VipAddress:       c.vipAddress,
			SecureVipAddress: c.secureVipAddress,
		},
	}
}
