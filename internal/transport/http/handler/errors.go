package handler

const errInternalServer = "Internal server error"

// User-facing flash messages.
const (
	msgDuplicateUsername  = "Username already exists"
	msgDuplicateEmail     = "Email already registered"
	msgRegistered         = "Registration successful! Please login."
	msgInvalidCredentials = "Invalid username or password"
	msgUnknownEmail       = "No account found with that email"
	msgMagicLinkSent      = "Check your email for a sign-in link"
	msgLinkExpired        = "That sign-in link has expired, request a new one"
	msgLinkInvalid        = "That sign-in link is not valid"
	msgResetSent          = "Check your email for a password reset link"
	msgResetFailed        = "That password reset link is no longer valid"
	msgPasswordUpdated    = "Password updated! Please login."
	msgPromptRequired     = "Title and content are required"
	msgPromptCreated      = "Prompt created successfully!"
	msgPromptUpdated      = "Prompt updated successfully!"
	msgPromptDeleted      = "Prompt deleted successfully!"
	msgPromptNotFound     = "Prompt not found"
	msgNoPermission       = "You do not have permission to modify this prompt"
)
