// Package messages is the catalog of user-facing bot texts.
package messages

const Welcome = `🍽️ Welcome to LunchBuddy! 🍽️

I'm here to help you manage your lunch enrollments.

Available commands:
• /enroll - Enroll for lunch service (collects your preferences)
• /unenroll - Unenroll from lunch service
• /status - Check your current enrollment status
• /help - Show this help message

Let's get started! Use /enroll to begin your enrollment.`

const HelpTemplate = `🍽️ LunchBuddy Help 🍽️

Commands:
• /enroll - Enroll for lunch service (collects your preferences)
• /unenroll - Unenroll from lunch service
• /status - Check your current enrollment status
• /help - Show this help message

Lunch is available on:
• %s

You can choose multiple days and set dietary preferences (Veg/Non-Veg).

Daily registration requests are sent at %s on the day before each lunch day.`

const StatusNotEnrolled = "❌ You are not enrolled for lunch service. Use /enroll to get started!"

const StatusTemplate = `✅ Enrollment Status

Name: %s
Email: %s
Dietary Preference: %s
Preferred Days: %s
Enrolled: %t`

// Enrollment conversation.
const (
	AlreadyEnrolled       = "You are already enrolled! Use /status to see your details or /unenroll first to re-enroll."
	EnrollmentWelcome     = "🍽️ Welcome to LunchBuddy enrollment!\n\nPlease provide your full name:"
	InvalidName           = "❌ Please provide a valid full name (at least 2 characters):"
	NameAcceptedTemplate  = "✅ Name: %s\n\nPlease provide your work email address:"
	InvalidEmail          = "❌ Please provide a valid email address:"
	EmailAcceptedTemplate = "✅ Email: %s\n\nPlease select your dietary preference:"
	DietAcceptedTemplate  = "✅ Dietary Preference: %s\n\nPlease select your preferred lunch days (you can select multiple):"
	NoDaysSelected        = "❌ Please select at least one day for lunch:"
	EnrollFailed          = "❌ Failed to complete enrollment. Please try again later, or contact support if the issue continues."
	EnrollmentCancelled   = "❌ Enrollment cancelled."
)

const EnrollSuccessTemplate = `🎉 Enrollment details submitted!

Name: %s
Email: %s
Dietary Preference: %s
Preferred Days: %s

Note: Your enrollment will be reviewed and confirmed internally before activation.`

// Unenroll.
const (
	UnenrollSuccess = "✅ You have been successfully unenrolled from the lunch service.\n\nYou can re-enroll anytime using /enroll."
	UnenrollFailure = "❌ You are not currently enrolled for lunch service."
)

// Lunch confirmation cycle.
const (
	LunchConfirmation        = "🍽️ Do you want lunch for tomorrow?"
	LunchConfirmationYes     = "Thanks for confirming! Lunch will be arranged for you tomorrow. 🍽️"
	LunchConfirmationNo      = "No worries! Lunch will not be arranged for you tomorrow."
	LunchConfirmationExpired = "This confirmation is no longer active or already recorded."

	LunchTimeoutOptIn = "⏰ No response received in time.\nYour lunch will be automatically arranged for you tomorrow as per your preferences."

	LunchTimeoutOptOut = "⏰ No response received in time.\nYour lunch will not be arranged for you tomorrow as per your preferences."
)
