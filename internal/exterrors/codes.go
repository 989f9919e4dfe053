// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

// Error codes for user cancellation.
const (
	CodeCancelled = "cancelled"
)

// Error codes for configuration errors.
const (
	CodeMissingProjectEndpoint  = "missing_ai_project_endpoint"
	CodeInvalidProjectEndpoint  = "invalid_ai_project_endpoint"
	CodeMissingGitHubToken      = "missing_github_token"
	CodeInvalidGitHubToken      = "invalid_github_token"
	CodeInvalidConfigValue      = "invalid_config_value"
	CodeInvalidAgentManifest    = "invalid_agent_manifest"
	CodeCredentialCreationError = "credential_creation_failed"
)

// Error codes for user input errors.
const (
	CodeEmptyMessage = "empty_message"
)

// Error codes for tool errors.
const (
	CodeUnknownTool       = "unknown_tool"
	CodeInvalidToolArgs   = "invalid_tool_arguments"
	CodeToolFailed        = "tool_failed"
	CodeToolPanicked      = "tool_panicked"
	CodeDuplicateTool     = "duplicate_tool"
	CodeRegistrySealed    = "registry_sealed"
	CodeInvalidToolSchema = "invalid_tool_schema"
)

// Error codes for run lifecycle errors.
const (
	CodeRunFailed            = "run_failed"
	CodeNoAssistantMessage   = "no_assistant_message"
	CodeMissingRequiredCalls = "missing_required_tool_calls"
	CodeRunPollTimeout       = "run_poll_timeout"
	CodeSessionNotReady      = "session_not_initialized"
)

// Operation names for ServiceFromAzure errors.
// These are prefixed to the Azure error code (e.g., "create_agent.NotFound").
const (
	OpCreateAgent       = "create_agent"
	OpDeleteAgent       = "delete_agent"
	OpCreateThread      = "create_thread"
	OpDeleteThread      = "delete_thread"
	OpCreateMessage     = "create_message"
	OpListMessages      = "list_messages"
	OpCreateRun         = "create_run"
	OpGetRun            = "get_run"
	OpSubmitToolOutputs = "submit_tool_outputs"
	OpCancelRun         = "cancel_run"
)
