// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// CredentialScope defines the Azure resource scope for token validation.
type CredentialScope string

const (
	// ScopeAIFoundry is the scope for Azure AI Foundry APIs.
	ScopeAIFoundry CredentialScope = "https://ai.azure.com/.default"
)

// CredentialOptions configures credential creation and validation.
type CredentialOptions struct {
	// TenantID is the Azure AD tenant to authenticate against.
	TenantID string
	// Scope is the Azure resource scope to validate the credential against.
	// If empty, defaults to ScopeAIFoundry.
	Scope CredentialScope
}

// NewCredential creates a DefaultAzureCredential and validates it can obtain a token.
// This catches login and multi-tenant issues before any agent resource is created.
func NewCredential(ctx context.Context, options CredentialOptions) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID:                   options.TenantID,
		AdditionallyAllowedTenants: []string{"*"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	scope := options.Scope
	if scope == "" {
		scope = ScopeAIFoundry
	}

	// The token is cached by the SDK, so subsequent calls reuse it.
	_, err = cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{string(scope)},
	})
	if err != nil {
		return nil, &AuthError{
			TenantID: options.TenantID,
			Cause:    err,
		}
	}

	return cred, nil
}

// AuthError represents an authentication failure with context for helpful error messages.
type AuthError struct {
	TenantID string
	Cause    error
}

func (e *AuthError) Error() string {
	tenant := e.TenantID
	if tenant == "" {
		tenant = "default"
	}

	return fmt.Sprintf(
		"failed to authenticate in tenant '%s'.\n"+
			"Suggestion: run `az login` (or `azd auth login`) and, for multi-tenant accounts, set AZURE_TENANT_ID",
		tenant)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}
