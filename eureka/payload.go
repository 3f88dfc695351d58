package eureka

import (
	"bytes"
	"encoding/json"
	"net"
	"strconv"
)

// RegistrationRequest is the register body: {"instance": {...}}.
type RegistrationRequest struct {
	Instance RegistrationInstance `json:"instance"`
}

// RegistrationInstance is the instance record sent on register. Field order
// is the wire order.
type RegistrationInstance struct {
	InstanceID       string             `json:"instanceId"`
	HostName         string             `json:"hostName"`
	App              string             `json:"app"`
	IPAddr           string             `json:"ipAddr"`
	Status           string             `json:"status"`
	OverriddenStatus string             `json:"overriddenstatus"`
	Port             InstancePort       `json:"port"`
	SecurePort       InstancePort       `json:"securePort"`
	CountryID        string             `json:"countryId"`
	DataCenterInfo   InstanceDataCenter `json:"dataCenterInfo"`
	HomePageURL      string             `json:"homePageUrl"`
	StatusPageURL    string             `json:"statusPageUrl"`
	HealthCheckURL   string             `json:"healthCheckUrl"`
	VipAddress       string             `json:"vipAddress"`
	SecureVipAddress string             `json:"secureVipAddress"`
}

// InstancePort is the {"$": ..., "@enabled": ...} port object.
type InstancePort struct {
	Value   string `json:"$"`
	Enabled bool   `json:"@enabled"`
}

// UnmarshalJSON accepts "$" as a number or string and "@enabled" as a bool
// or the strings "true"/"false", which is how Eureka servers render them.
func (p *InstancePort) UnmarshalJSON(b []byte) error {
	var raw struct {
		Value   json.RawMessage `json:"$"`
		Enabled json.RawMessage `json:"@enabled"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Value = unquote(raw.Value)
	p.Enabled, _ = strconv.ParseBool(unquote(raw.Enabled))
	return nil
}

// InstanceDataCenter is the dataCenterInfo object.
type InstanceDataCenter struct {
	Class string `json:"@class"`
	Name  string `json:"name"`
}

// Instance is a service instance as returned by the registry. Commonly used
// fields are decoded; Raw holds the full record.
type Instance struct {
	InstanceID       string              `json:"instanceId"`
	HostName         string              `json:"hostName"`
	App              string              `json:"app"`
	IPAddr           string              `json:"ipAddr"`
	Status           string              `json:"status"`
	OverriddenStatus string              `json:"overriddenstatus,omitempty"`
	Port             *InstancePort       `json:"port,omitempty"`
	SecurePort       *InstancePort       `json:"securePort,omitempty"`
	DataCenterInfo   *InstanceDataCenter `json:"dataCenterInfo,omitempty"`
	HomePageURL      string              `json:"homePageUrl,omitempty"`
	StatusPageURL    string              `json:"statusPageUrl,omitempty"`
	HealthCheckURL   string              `json:"healthCheckUrl,omitempty"`
	VipAddress       string              `json:"vipAddress,omitempty"`
	SecureVipAddress string              `json:"secureVipAddress,omitempty"`
	Metadata         map[string]any      `json:"metadata,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps a copy of the record.
func (i *Instance) UnmarshalJSON(b []byte) error {
	type plain Instance
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*i = Instance(p)
	i.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON writes Raw when present so a decoded record round-trips
// unchanged.
func (i Instance) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	type plain Instance
	return json.Marshal(plain(i))
}

// Address returns host:port using the IP address and the plain port.
func (i Instance) Address() string {
	host := i.IPAddr
	if host == "" {
		host = i.HostName
	}
	if i.Port == nil || i.Port.Value == "" {
		return host
	}
	return net.JoinHostPort(host, i.Port.Value)
}

// applicationResponse is the body of GET /eureka/apps/{app}.
type applicationResponse struct {
	Application *struct {
		Name     string       `json:"name"`
		Instance instanceList `json:"instance"`
	} `json:"application"`
}

// instanceList decodes "instance" whether the registry sent an array or a
// single object.
type instanceList []Instance

func (l *instanceList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '[':
		var list []Instance
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		var one Instance
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*l = instanceList{one}
		return nil
	}
}

// decodeInstances returns the instances in body, or nil when the body has
// none or cannot be decoded.
func decodeInstances(body []byte) []Instance {
	var resp applicationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	if resp.Application == nil || len(resp.Application.Instance) == 0 {
		return nil
	}
	return resp.Application.Instance
}

func unquote(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
