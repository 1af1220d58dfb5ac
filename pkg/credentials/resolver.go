package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvSnapshot captures the process environment once.
func EnvSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Resolver picks the credential set for one invocation. Tiers are consulted
// in order and the first one holding any key wins as a whole:
// call-time arguments, environment, local file, global file.
type Resolver struct {
	env        map[string]string
	localFile  string
	globalFile string
	reader     *FileReader
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFiles sets the local and global key file paths. Empty disables the tier.
func WithFiles(local, global string) ResolverOption {
	return func(r *Resolver) {
		r.localFile = local
		r.globalFile = global
	}
}

// WithReadAttempts bounds how often a failing key file read is attempted.
func WithReadAttempts(n int) ResolverOption {
	return func(r *Resolver) {
		r.reader = NewFileReader(n)
	}
}

// NewResolver creates a resolver over an environment snapshot. The map is
// copied so later changes by the caller are not observed.
func NewResolver(env map[string]string, opts ...ResolverOption) *Resolver {
	snapshot := make(map[string]string, len(env))
	for k, v := range env {
		snapshot[k] = v
	}
	r := &Resolver{env: snapshot, reader: NewFileReader(3)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LocalFile returns the per-project key file path.
func (r *Resolver) LocalFile() string { return r.localFile }

// GlobalFile returns the per-user key file path.
func (r *Resolver) GlobalFile() string { return r.globalFile }

// Resolve returns the winning credential set. It never fails: unreadable
// files are reported as warnings and treated as empty.
func (r *Resolver) Resolve(ctx context.Context, cli Credentials) Resolution {
	if cli.Any() {
		return Resolution{Credentials: trim(cli), Source: SourceCLI}
	}

	if env := fromMap(r.env, true); env.Any() {
		return Resolution{Credentials: env, Source: SourceEnvironment}
	}

	var warnings []string
	tiers := []struct {
		path   string
		source Source
	}{
		{r.localFile, SourceLocalFile},
		{r.globalFile, SourceGlobalFile},
	}
	for _, tier := range tiers {
		if tier.path == "" {
			continue
		}
		values, err := r.reader.Read(ctx, tier.path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not read %s key file %s: %v", tier.source, tier.path, err))
			continue
		}
		if creds := fromMap(values, false); creds.Any() {
			return Resolution{Credentials: creds, Source: tier.source, Path: tier.path, Warnings: warnings}
		}
	}

	return Resolution{Source: SourceNone, Warnings: warnings}
}

func trim(c Credentials) Credentials {
	return Credentials{
		Gemini:     strings.TrimSpace(c.Gemini),
		Qwen:       strings.TrimSpace(c.Qwen),
		OpenRouter: strings.TrimSpace(c.OpenRouter),
		Anthropic:  strings.TrimSpace(c.Anthropic),
	}
}
