package workspace

import (
	"errors"

	"github.com/ekaya-inc/ekaya-enrich/pkg/client"
)

const (
	msgSelectTable        = "Please select a table first"
	msgEmptyDescription   = "Description cannot be empty"
	msgNoColumnDrafts     = "No column descriptions to save"
	msgNoMissingColumns   = "All columns already have descriptions"
	msgBlankCredentials   = "Username and password are required"
	msgLoginFailed        = "Login failed"
	msgUnreachable        = "Unable to reach the server"
	msgTableUpdated       = "Table description updated successfully"
	msgColumnsUpdated     = "Column descriptions updated successfully"
	msgDuplicateGenerated = "Generated descriptions repeat column %q"
)

// Text that would still be reported as missing after saving.
const (
	msgPlaceholderDescription = "Description is too short or a placeholder"
	msgPlaceholderColumn      = "Description for column %q is too short or a placeholder"
)

// ErrorMessage returns the text shown for a failed request: the server's
// detail when there is one, otherwise a message built from the status.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "Request failed: " + apiErr.Status
	}
	if errors.Is(err, client.ErrUnreachable) {
		return msgUnreachable
	}
	return err.Error()
}

// loginErrorMessage maps a login failure to the form's error text.
func loginErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return msgLoginFailed
	}
	if errors.Is(err, client.ErrUnreachable) {
		return msgUnreachable
	}
	return msgLoginFailed
}

func loadFailed(what string, err error) string {
	return "Loading " + what + " failed: " + ErrorMessage(err)
}
