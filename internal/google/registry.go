package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
	slides "google.golang.org/api/slides/v1"
)

// BuildFunc constructs a typed Google SDK service from client options.
type BuildFunc func(ctx context.Context, opts ...option.ClientOption) (interface{}, error)

// API describes one Google API version the registry can build clients for.
type API struct {
	Name    string
	Version string
	Scopes  []string

	build BuildFunc
}

// NewAPI describes an API built by build.
func NewAPI(name, version string, scopes []string, build BuildFunc) API {
	return API{Name: name, Version: version, Scopes: scopes, build: build}
}

// String returns "name/version".
func (a API) String() string {
	return a.Name + "/" + a.Version
}

// Supported APIs.
var (
	DriveV3 = NewAPI("drive", "v3", DriveScopes, func(ctx context.Context, opts ...option.ClientOption) (interface{}, error) {
		return drive.NewService(ctx, opts...)
	})
	SheetsV4 = NewAPI("sheets", "v4", SheetsScopes, func(ctx context.Context, opts ...option.ClientOption) (interface{}, error) {
		return sheets.NewService(ctx, opts...)
	})
	SlidesV1 = NewAPI("slides", "v1", SlidesScopes, func(ctx context.Context, opts ...option.ClientOption) (interface{}, error) {
		return slides.NewService(ctx, opts...)
	})
)

// SessionResolver produces sessions. *Resolver is the production implementation.
type SessionResolver interface {
	Resolve(ctx context.Context, spec CredentialSpec) (*Session, error)
}

// ServiceClient is a constructed service handle bound to one session.
type ServiceClient struct {
	API     API
	Session *Session

	service interface{}
}

// Service returns the typed SDK service, e.g. *drive.Service.
func (c *ServiceClient) Service() interface{} {
	return c.service
}

// MapError converts an error returned by the SDK during operation op into one
// of this package's error kinds.
func (c *ServiceClient) MapError(op string, err error) error {
	return mapError(c.Session.Kind(), c.Session.Spec.Path, c.API.Name, op, err)
}

// Service returns the typed SDK service held by sc.
func Service[T any](sc *ServiceClient) (T, error) {
	svc, ok := sc.service.(T)
	if !ok {
		var zero T
		return zero, &ClientConstructionError{
			Service: sc.API.Name,
			Version: sc.API.Version,
			Err:     fmt.Errorf("service is %T, not %T", sc.service, zero),
		}
	}
	return svc, nil
}

// ClientSource hands out service clients for one credential spec. Wrappers
// depend on this rather than on the registry itself.
type ClientSource interface {
	Client(ctx context.Context, api API) (*ServiceClient, error)
}

// Registry builds and caches service clients keyed by session and API. It is
// owned by the entry point and safe for concurrent use.
type Registry struct {
	resolver   SessionResolver
	apis       map[string]API
	clientOpts []option.ClientOption
	logger     *slog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	clients map[string]*ServiceClient
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClientOptions appends options to every service construction, for
// example an endpoint override.
func WithClientOptions(opts ...option.ClientOption) RegistryOption {
	return func(r *Registry) {
		r.clientOpts = append(r.clientOpts, opts...)
	}
}

// WithAPI registers an additional API or replaces a supported one.
func WithAPI(api API) RegistryOption {
	return func(r *Registry) {
		r.apis[api.String()] = api
	}
}

// WithRegistryLogger sets the logger. The default is slog.Default().
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a Registry serving DriveV3, SheetsV4 and SlidesV1.
func NewRegistry(resolver SessionResolver, opts ...RegistryOption) *Registry {
	r := &Registry{
		resolver: resolver,
		apis:     make(map[string]API),
		logger:   slog.Default(),
		clients:  make(map[string]*ServiceClient),
	}
	for _, api := range []API{DriveV3, SheetsV4, SlidesV1} {
		r.apis[api.String()] = api
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the API registered as name/version.
func (r *Registry) Lookup(name, version string) (API, bool) {
	api, ok := r.apis[name+"/"+version]
	return api, ok
}

// APIs lists the registered APIs sorted by name.
func (r *Registry) APIs() []API {
	apis := make([]API, 0, len(r.apis))
	for _, api := range r.apis {
		apis = append(apis, api)
	}
	sort.Slice(apis, func(i, j int) bool {
		return apis[i].String() < apis[j].String()
	})
	return apis
}

// Client returns the cached client for spec and name/version, constructing it
// on first use. Repeated calls return the identical *ServiceClient. An
// unregistered API fails with ClientConstructionError before any credential
// work. Resolver errors are returned unchanged.
func (r *Registry) Client(ctx context.Context, spec CredentialSpec, name, version string) (*ServiceClient, error) {
	markAPIUse(ctx)
	api, ok := r.Lookup(name, version)
	if !ok || api.build == nil {
		return nil, &ClientConstructionError{Service: name, Version: version, Err: errors.New("unsupported API")}
	}

	session, err := r.resolver.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}

	key := session.ID + "|" + api.String()
	if c := r.cached(key); c != nil {
		return c, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		if c := r.cached(key); c != nil {
			return c, nil
		}

		opts := append([]option.ClientOption{
			option.WithHTTPClient(session.HTTPClient(context.Background())),
		}, r.clientOpts...)

		svc, err := api.build(ctx, opts...)
		if err != nil {
			return nil, &ClientConstructionError{Service: api.Name, Version: api.Version, Err: err}
		}

		c := &ServiceClient{API: api, Session: session, service: svc}
		r.mu.Lock()
		r.clients[key] = c
		r.mu.Unlock()

		r.logger.Debug("Constructed service client", "service", api.String(), "session", session.ID)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ServiceClient), nil
}

func (r *Registry) cached(key string) *ServiceClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[key]
}

// For returns a Base bound to spec.
func (r *Registry) For(spec CredentialSpec) *Base {
	return &Base{registry: r, spec: spec}
}

// Base is a ClientSource bound to one credential spec. It is what the service
// wrappers hold.
type Base struct {
	registry *Registry
	spec     CredentialSpec
}

// Spec returns the credential spec the base is bound to.
func (b *Base) Spec() CredentialSpec {
	return b.spec
}

// Client implements ClientSource.
func (b *Base) Client(ctx context.Context, api API) (*ServiceClient, error) {
	return b.registry.Client(ctx, b.spec, api.Name, api.Version)
}

type apiUseKey struct{}

// APIUse records whether a service client was requested under a context.
// Wrapper operations ask for a client only after validating their input.
type APIUse struct {
	used atomic.Bool
}

// Used reports whether a client was requested.
func (u *APIUse) Used() bool {
	return u.used.Load()
}

// WithAPIUse returns a child of ctx that records client requests in the
// returned APIUse.
func WithAPIUse(ctx context.Context) (context.Context, *APIUse) {
	u := &APIUse{}
	return context.WithValue(ctx, apiUseKey{}, u), u
}

func markAPIUse(ctx context.Context) {
	if u, ok := ctx.Value(apiUseKey{}).(*APIUse); ok {
		u.used.Store(true)
	}
}
