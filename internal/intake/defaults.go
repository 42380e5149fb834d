package intake

// Field keys of the default schema.
const (
	KeyName       = "name"
	KeyEmail      = "email"
	KeyPhone      = "phone"
	KeyExperience = "experience"
	KeyPosition   = "position"
	KeyLocation   = "location"
	KeyTechStack  = "techstack"
)

// DefaultSchema returns the candidate intake fields in interview order.
func DefaultSchema() *Schema {
	return MustSchema(
		Field{
			Key:      KeyName,
			Label:    "Full name",
			Prompt:   "👋 Hi! I’m TalentScout, your AI hiring assistant. Please enter your full name (letters and spaces only).",
			Validate: ValidName,
		},
		Field{
			Key:      KeyEmail,
			Label:    "Email",
			Prompt:   "Nice to meet you, {{name}}! Please provide a valid email address (e.g., user@example.com).",
			Validate: ValidEmail,
		},
		Field{
			Key:      KeyPhone,
			Label:    "Phone",
			Prompt:   "Thanks, {{name}}! Please share your phone number (e.g., +1234567890 or 1234567890).",
			Validate: ValidPhone,
		},
		Field{
			Key:      KeyExperience,
			Label:    "Years of experience",
			Prompt:   "Got it! How many years of experience do you have, {{name}}? (Enter a number, e.g., 3).",
			Validate: ValidYears,
		},
		Field{
			Key:      KeyPosition,
			Label:    "Desired position",
			Prompt:   "Perfect. What position or role are you applying for, {{name}}? (At least 3 characters, e.g., AI Engineer).",
			Validate: MinLength(3),
		},
		Field{
			Key:      KeyLocation,
			Label:    "Location",
			Prompt:   "Great! Where are you currently located, {{name}}? (At least 3 characters, e.g., New York).",
			Validate: MinLength(3),
		},
		Field{
			Key:      KeyTechStack,
			Label:    "Tech stack",
			Prompt:   "Awesome! Please list your tech stack — programming languages, frameworks, and tools you use most (e.g., Python, Django, TensorFlow).",
			Validate: MinLength(3),
		},
	)
}
