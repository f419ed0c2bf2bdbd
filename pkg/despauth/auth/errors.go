package auth

// ConfigurationError indicates invalid or incomplete configuration, such as
// an unknown service name or a missing required field with no environment or
// prompt fallback. It is never retried.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthenticationError indicates the IAM server rejected the grant, the OTP
// was rejected, the token exchange failed, or the token endpoint could not be
// reached. The message carries the server-reported error description when one
// was available.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }
