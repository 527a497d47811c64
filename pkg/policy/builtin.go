package policy

// BuiltinRules returns the built-in admission rules.
func BuiltinRules() []Rule {
	return []Rule{
		payloadNotEmptyRule(),
		payloadSizeLimitRule(),
		awsRoleFormatRule(),
		ethereumEndpointRule(),
	}
}

// payloadNotEmptyRule blocks deployments with nothing to deploy.
func payloadNotEmptyRule() Rule {
	return Rule{
		Name:        "payload-not-empty",
		Description: "Blocks deployments whose compiled payload is empty",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"payload"},
		Rego: `package rift.policies.payload

import rego.v1

deny contains violation if {
	input.payload_size == 0
	violation := {
		"message": "deployment payload is empty",
		"severity": "error",
	}
}`,
	}
}

// payloadSizeLimitRule warns about payloads large enough to slow sinks down.
func payloadSizeLimitRule() Rule {
	return Rule{
		Name:        "payload-size-limit",
		Description: "Warns when the compiled payload exceeds 10MB",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"payload"},
		Rego: `package rift.policies.size

import rego.v1

max_payload_bytes := 10485760

deny contains violation if {
	input.payload_size > max_payload_bytes
	violation := {
		"message": sprintf("payload of %d bytes exceeds the %d byte limit", [input.payload_size, max_payload_bytes]),
		"severity": "warning",
	}
}`,
	}
}

// awsRoleFormatRule requires the aws role to be an ARN.
func awsRoleFormatRule() Rule {
	return Rule{
		Name:        "aws-role-format",
		Description: "Requires the aws sink role to be an IAM role ARN",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"aws", "credentials"},
		Rego: `package rift.policies.aws

import rego.v1

deny contains violation if {
	input.sink == "aws"
	role := input.config.role
	not startswith(role, "arn:")
	violation := {
		"message": sprintf("aws role '%s' is not an ARN", [role]),
		"severity": "error",
	}
}`,
	}
}

// ethereumEndpointRule flags deployments that would hit the public mainnet
// endpoint without an explicit override.
func ethereumEndpointRule() Rule {
	return Rule{
		Name:        "ethereum-endpoint",
		Description: "Warns when the ethereum sink falls back to the public mainnet endpoint",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"ethereum"},
		Rego: `package rift.policies.ethereum

import rego.v1

deny contains violation if {
	input.sink == "ethereum"
	not input.config.endpoint
	violation := {
		"message": "ethereum deployment will use the public mainnet endpoint",
		"severity": "warning",
	}
}`,
	}
}
