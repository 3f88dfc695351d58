package endpoint

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eurekaclient/errors"
	"github.com/kbukum/eurekaclient/eureka"
	"github.com/kbukum/eurekaclient/server"
	"github.com/kbukum/eurekaclient/util"
	"github.com/kbukum/eurekaclient/validation"
)

const maxAppNameLength = 255

// Discovery resolves application instances. *eureka.Client implements it.
type Discovery interface {
	FetchInstances(ctx context.Context, appName string) ([]eureka.Instance, error)
	FetchInstance(ctx context.Context, appName string) (eureka.Instance, error)
	Invalidate(appName string)
	Forget(ctx context.Context, appName string) error
	ClearCache()
}

// Registration exposes this process's own registration. *eureka.Client
// implements it.
type Registration interface {
	Config() *eureka.InstanceConfig
	IsRegistered(ctx context.Context) bool
	LastHeartbeat() (eureka.HeartbeatResult, bool)
}

// RegisterRoutes mounts the lookup API on r:
//
//	GET    /apps/:app           all instances of app
//	GET    /apps/:app/instance  one instance chosen by the discovery strategy
//	DELETE /cache               drop every cached application
//	DELETE /cache/:app          drop one cached application; ?snapshot=true
//	                            also removes its stored snapshot
//	GET    /registration        this instance's payload and heartbeat state
func RegisterRoutes(r gin.IRouter, d Discovery, reg Registration) {
	r.GET("/apps/:app", Instances(d))
	r.GET("/apps/:app/instance", Instance(d))
	r.DELETE("/cache", ClearCache(d))
	r.DELETE("/cache/:app", Invalidate(d))
	if reg != nil {
		r.GET("/registration", RegistrationStatus(reg))
	}
}

// Instances lists every instance of the application in the path.
func Instances(d Discovery) gin.HandlerFunc {
	return func(c *gin.Context) {
		app, err := appParam(c)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		instances, err := d.FetchInstances(c.Request.Context(), app)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, instances)
	}
}

// Instance returns one instance of the application in the path.
func Instance(d Discovery) gin.HandlerFunc {
	return func(c *gin.Context) {
		app, err := appParam(c)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		instance, err := d.FetchInstance(c.Request.Context(), app)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, instance)
	}
}

// Invalidate drops the cached instances of the application in the path.
// With ?snapshot=true the fallback snapshot is removed as well.
func Invalidate(d Discovery) gin.HandlerFunc {
	return func(c *gin.Context) {
		app, err := appParam(c)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		withSnapshot, _ := strconv.ParseBool(c.Query("snapshot"))
		if !withSnapshot {
			d.Invalidate(app)
			server.RespondNoContent(c)
			return
		}
		if err := d.Forget(c.Request.Context(), app); err != nil {
			server.RespondWithError(c, errors.ServiceUnavailable("snapshot store").WithCause(err))
			return
		}
		server.RespondNoContent(c)
	}
}

// ClearCache drops every cached application.
func ClearCache(d Discovery) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.ClearCache()
		server.RespondNoContent(c)
	}
}

type heartbeatView struct {
	Outcome       string    `json:"outcome"`
	StatusCode    int       `json:"statusCode,omitempty"`
	TransportCode string    `json:"transportCode,omitempty"`
	At            time.Time `json:"at"`
}

type registrationView struct {
	InstanceID    string                     `json:"instanceId"`
	Registered    bool                       `json:"registered"`
	Registry      string                     `json:"registry"`
	Payload       eureka.RegistrationRequest `json:"payload"`
	LastHeartbeat *heartbeatView             `json:"lastHeartbeat,omitempty"`
}

// RegistrationStatus reports the registration payload this process sends,
// whether the registry currently knows it and the last heartbeat outcome.
func RegistrationStatus(reg Registration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := reg.Config()
		view := registrationView{
			InstanceID: cfg.InstanceID(),
			Registered: reg.IsRegistered(c.Request.Context()),
			Registry:   util.RedactURL(cfg.EurekaDefaultURL()),
			Payload:    cfg.RegistrationPayload(),
		}
		if hb, ok := reg.LastHeartbeat(); ok {
			view.LastHeartbeat = &heartbeatView{
				Outcome:    hb.Outcome.String(),
				StatusCode: hb.StatusCode,
				At:         hb.At,
			}
			if hb.TransportCode != 0 {
				view.LastHeartbeat.TransportCode = hb.TransportCode.String()
			}
		}
		server.RespondOK(c, view)
	}
}

func appParam(c *gin.Context) (string, error) {
	app := c.Param("app")
	if strings.TrimSpace(app) == "" {
		return "", errors.MissingField("app")
	}
	v := validation.New().
		MaxLength("app", app, maxAppNameLength).
		Pattern("app", app, eureka.AppNamePattern)
	if appErr := v.Validate(); appErr != nil {
		return "", appErr
	}
	return app, nil
}
