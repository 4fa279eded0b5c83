package config

import "github.com/jrsteele09/go-auth-proxy/aad"

// AzureConfig supplies the Azure AD app registration. Tenant, client and
// resource values are opaque strings provided by the embedding deployment.
type AzureConfig interface {
	GetAzureTenantID() string
	GetAzureClientID() string
	GetAzureClientSecret() string
	GetAzureResourceURI() string
	GetAzureAuthorityURL() string
}

type Azure struct{}

var _ AzureConfig = Azure{}

func (Azure) GetAzureTenantID() string {
	return GetEnv("AZURE_TENANT_ID", "")
}

func (Azure) GetAzureClientID() string {
	return GetEnv("AZURE_CLIENT_ID", "")
}

func (Azure) GetAzureClientSecret() string {
	return GetEnv("AZURE_CLIENT_SECRET", "")
}

func (Azure) GetAzureResourceURI() string {
	return GetEnv("AZURE_RESOURCE_URI", "")
}

// GetAzureAuthorityURL returns the identity provider base URL. The default is
// the public cloud authority; sovereign clouds set AZURE_AUTHORITY_URL.
func (Azure) GetAzureAuthorityURL() string {
	return GetEnv("AZURE_AUTHORITY_URL", aad.DefaultAuthorityURL)
}
