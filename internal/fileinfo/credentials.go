package fileinfo

import (
	"sync"

	"pickfs/internal/secret"
)

// Credentials are SMB authentication parameters. Persist asks the provider
// to save them to the secret store after a successful mount.
type Credentials struct {
	Domain   string
	Username string
	Password string
	Persist  bool
}

func (c Credentials) empty() bool {
	return c.Username == "" && c.Password == "" && c.Domain == ""
}

// CredentialsProvider supplies credentials, possibly by prompting the user.
type CredentialsProvider interface {
	Get(host, share, relPath string) (Credentials, error)
}

var (
	credProvider CredentialsProvider
	secretStore  secret.Store
)

// SetCredentialsProvider installs the provider SMBFS asks last.
func SetCredentialsProvider(p CredentialsProvider) { credProvider = p }

// SetSecretStore installs the persistent store. With nil, only the memory
// cache is used.
func SetSecretStore(s secret.Store) { secretStore = s }

func cacheKey(host, share string) string { return host + "\x00" + share }

// getCredentials consults the memory cache, then the secret store, then the
// provider.
func getCredentials(host, share, rel string) Credentials {
	if c, ok := GetCachedCredentials(host, share); ok {
		return c
	}
	if secretStore != nil {
		if d, u, p, found, _ := secretStore.Get(host, share); found {
			c := Credentials{Domain: d, Username: u, Password: p}
			PutCachedCredentials(host, share, c)
			return c
		}
	}
	if credProvider == nil {
		return Credentials{}
	}
	c, err := credProvider.Get(host, share, rel)
	if err != nil {
		return Credentials{}
	}
	return c
}

// CachedCredentialsProvider caches what its fallback returns per host/share.
type CachedCredentialsProvider struct {
	fallback CredentialsProvider
	mu       sync.RWMutex
	cache    map[string]Credentials
}

func NewCachedCredentialsProvider(fallback CredentialsProvider) *CachedCredentialsProvider {
	return &CachedCredentialsProvider{fallback: fallback, cache: make(map[string]Credentials)}
}

func (p *CachedCredentialsProvider) Get(host, share, relPath string) (Credentials, error) {
	if c, ok := p.lookup(host, share); ok {
		return c, nil
	}
	if p.fallback == nil {
		return Credentials{}, nil
	}
	c, err := p.fallback.Get(host, share, relPath)
	if err != nil {
		return c, err
	}
	p.Put(host, share, c)
	return c, nil
}

// Put seeds the cache, e.g. with credentials parsed from a URL.
func (p *CachedCredentialsProvider) Put(host, share string, c Credentials) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cache == nil {
		p.cache = make(map[string]Credentials)
	}
	p.cache[cacheKey(host, share)] = c
}

func (p *CachedCredentialsProvider) lookup(host, share string) (Credentials, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cache[cacheKey(host, share)]
	return c, ok && !c.empty()
}

func (p *CachedCredentialsProvider) forget(host, share string) {
	p.mu.Lock()
	delete(p.cache, cacheKey(host, share))
	p.mu.Unlock()
}

// PutCachedCredentials seeds the installed provider's cache, if it has one.
func PutCachedCredentials(host, share string, c Credentials) {
	if cp, ok := credProvider.(*CachedCredentialsProvider); ok {
		cp.Put(host, share, c)
	}
}

// GetCachedCredentials returns cached credentials without consulting the
// secret store or prompting.
func GetCachedCredentials(host, share string) (Credentials, bool) {
	if cp, ok := credProvider.(*CachedCredentialsProvider); ok {
		return cp.lookup(host, share)
	}
	return Credentials{}, false
}

// ClearCachedCredentials drops cached credentials, e.g. after a logon failure.
func ClearCachedCredentials(host, share string) {
	if cp, ok := credProvider.(*CachedCredentialsProvider); ok {
		cp.forget(host, share)
	}
}
