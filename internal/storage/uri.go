package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists all currently supported storage URI schemes
var SupportedSchemes = []string{"memory", "file", "keyring", "sqlite", "postgres", "postgresql", "s3", "s3+http"}

// StorageURI represents a parsed storage backend URI
type StorageURI struct {
	Scheme string     // Storage backend type (e.g., "file", "keyring")
	Host   string     // Host for network backends, service name for keyring
	Path   string     // Path to storage resource
	Query  url.Values // Backend options (e.g., region for s3)
	Raw    string     // Original URI string for logging/debugging
}

// NormalizeStorageURI ensures the URI has a scheme, prepending "file://" if missing
func NormalizeStorageURI(uri string) string {
	if uri == "" {
		return uri
	}
	if !hasScheme(uri) {
		return "file://" + uri
	}
	return uri
}

func hasScheme(uri string) bool {
	return strings.Contains(uri, "://")
}

// ParseStorageURI parses a storage URI string into its components
func ParseStorageURI(uri string) (*StorageURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("storage URI cannot be empty")
	}

	// A bare path is taken literally: '#', '?' and '%' are valid filename characters
	if !hasScheme(uri) {
		return &StorageURI{Scheme: "file", Path: uri, Raw: uri}, nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid URI format: %w", err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("URI must have a scheme (e.g., file://)")
	}

	if err := validateScheme(parsed.Scheme); err != nil {
		return nil, err
	}

	result := &StorageURI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Query:  parsed.Query(),
		Raw:    uri,
	}

	switch parsed.Scheme {
	case "memory":
		return result, nil

	case "keyring":
		if strings.Trim(parsed.Path, "/") != "" {
			return nil, fmt.Errorf("keyring URI does not support a path: keyring://<service>")
		}
		return result, nil

	case "postgres", "postgresql":
		if parsed.Host == "" {
			return nil, fmt.Errorf("postgres URI must include a host: postgres://<user>@<host>/<database>")
		}
		result.Path = strings.TrimPrefix(parsed.Path, "/")
		return result, nil

	case "s3", "s3+http":
		if parsed.Host == "" {
			return nil, fmt.Errorf("S3 URI must include endpoint host: s3://<endpoint>/<bucket>/<prefix>")
		}
		s3Path := strings.Trim(parsed.Path, "/")
		if s3Path == "" {
			return nil, fmt.Errorf("S3 URI must include a bucket: s3://<endpoint>/<bucket>/<prefix>")
		}
		result.Path = s3Path
		return result, nil
	}

	// file:// and sqlite:// carry a local path, which may be in several places
	path := parsed.Path
	if path == "" && parsed.Opaque != "" {
		path = parsed.Opaque
	}
	switch {
	case parsed.Host == "":
		// file:///abs/path
	case parsed.Host == "." || parsed.Host == "..":
		// file://./path format
		path = parsed.Host + "/" + strings.TrimPrefix(path, "/")
	case isDriveLetter(parsed.Host):
		// Windows drive letter: file://C:/path
		path = strings.TrimSuffix(parsed.Host, ":") + ":" + path
	default:
		// Relative path whose first segment was parsed as host: file://data/creds.yaml
		path = parsed.Host + path
	}
	result.Host = ""

	if path == "" {
		return nil, fmt.Errorf("storage URI must have a path")
	}
	result.Path = path

	return result, nil
}

func isDriveLetter(host string) bool {
	host = strings.TrimSuffix(host, ":")
	if len(host) != 1 {
		return false
	}
	c := host[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// validateScheme checks if the scheme is supported
func validateScheme(scheme string) error {
	for _, s := range SupportedSchemes {
		if scheme == s {
			return nil
		}
	}

	return fmt.Errorf("unsupported storage scheme %q; supported schemes: %s",
		scheme, strings.Join(SupportedSchemes, ", "))
}

// IsFileScheme returns true if this is a file:// URI
func (u *StorageURI) IsFileScheme() bool {
	return u.Scheme == "file"
}

// IsS3Scheme returns true if this is an s3:// or s3+http:// URI
func (u *StorageURI) IsS3Scheme() bool {
	return u.Scheme == "s3" || u.Scheme == "s3+http"
}

// IsPostgresScheme returns true if this is a postgres:// or postgresql:// URI
func (u *StorageURI) IsPostgresScheme() bool {
	return u.Scheme == "postgres" || u.Scheme == "postgresql"
}

// S3Endpoint returns the S3 endpoint host (with port, if any)
func (u *StorageURI) S3Endpoint() string {
	return u.Host
}

// S3Bucket returns the first path segment
func (u *StorageURI) S3Bucket() string {
	bucket, _, _ := strings.Cut(u.Path, "/")
	return bucket
}

// S3Prefix returns the object key prefix after the bucket, without trailing slash
func (u *StorageURI) S3Prefix() string {
	_, prefix, _ := strings.Cut(u.Path, "/")
	return strings.TrimSuffix(prefix, "/")
}

// S3UseSSL returns false only for s3+http:// URIs
func (u *StorageURI) S3UseSSL() bool {
	return u.Scheme != "s3+http"
}

// S3Region returns the region query parameter, if any
func (u *StorageURI) S3Region() string {
	if u.Query == nil {
		return ""
	}
	return u.Query.Get("region")
}

// String returns the original URI string
func (u *StorageURI) String() string {
	return u.Raw
}

// Redacted returns the URI with any password replaced, safe for logging
func (u *StorageURI) Redacted() string {
	if !hasScheme(u.Raw) {
		return u.Raw
	}
	parsed, err := url.Parse(u.Raw)
	if err != nil {
		return u.Raw
	}
	return parsed.Redacted()
}

// SetURLPassword returns rawURL with its userinfo password replaced by password
func SetURLPassword(rawURL, password string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URI format: %w", err)
	}
	username := ""
	if parsed.User != nil {
		username = parsed.User.Username()
	}
	parsed.User = url.UserPassword(username, password)
	return parsed.String(), nil
}
