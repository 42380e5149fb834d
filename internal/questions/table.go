package questions

// GenericQuestions are asked when no bucket matches the tech stack.
var GenericQuestions = []string{
	"Could you describe a recent project where you used your mentioned tech stack?",
	"What challenges did you face while working with your tech stack?",
	"How do you stay updated with advancements in your tech stack?",
}

// DefaultBuckets is the built-in keyword table, in priority order.
var DefaultBuckets = []Bucket{
	{
		Name:     "python",
		Keywords: []string{"python"},
		Questions: []string{
			"What are Python decorators and how are they used in practice?",
			"Explain the difference between deep copy and shallow copy in Python.",
			"How does Python’s Global Interpreter Lock (GIL) impact multi-threading?",
		},
	},
	{
		Name:     "django",
		Keywords: []string{"django"},
		Questions: []string{
			"What is the role of Django’s ORM in handling database operations?",
			"Explain how Django’s middleware processes requests and responses.",
			"How do you optimize Django queries for performance?",
		},
	},
	{
		Name:     "machine-learning",
		Keywords: []string{"machine learning", "ml", "tensorflow"},
		Questions: []string{
			"What techniques can you use to prevent overfitting in machine learning models?",
			"Explain the difference between supervised and unsupervised learning.",
			"How does TensorFlow’s computational graph work?",
		},
	},
	{
		Name:     "react",
		Keywords: []string{"react"},
		Questions: []string{
			"What are React hooks and how do they simplify state management?",
			"How does React’s reconciliation process optimize rendering?",
			"What is the difference between controlled and uncontrolled components in React?",
		},
	},
	{
		Name:     "java",
		Keywords: []string{"java"},
		Questions: []string{
			"What is the difference between an abstract class and an interface in Java?",
			"Explain the role of the JVM in Java’s platform independence.",
			"How does Java’s garbage collector work?",
		},
	},
	{
		Name:     "sql",
		Keywords: []string{"sql"},
		Questions: []string{
			"What is the difference between INNER JOIN and LEFT JOIN in SQL?",
			"How would you optimize a slow-running SQL query?",
			"Explain the concept of database normalization.",
		},
	},
}
