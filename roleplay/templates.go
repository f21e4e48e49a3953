package roleplay

// Prebuilt session configs for common practice scenarios. Callers set
// ContextPrompt and PassingScore as needed before starting a session.

// DifficultCustomer is a customer-service de-escalation exercise.
func DifficultCustomer() Config {
	return Config{
		Scenario:      "A customer is upset about a delayed order and demanding a refund, but the delay was due to shipping carrier issues outside your control.",
		LearnerRole:   "Customer Service Representative",
		AIRole:        "Frustrated Customer",
		AIName:        "Jordan",
		AIPersonality: "Upset and impatient, but willing to listen if treated with respect. Becomes more cooperative when acknowledged.",
		AIBackground:  "Regular customer who ordered an important item for an event. The order is 3 days late.",
		Objectives: []string{
			"Acknowledge the customer's frustration",
			"Explain the situation clearly without making excuses",
			"Offer a reasonable solution",
			"Maintain professionalism throughout",
		},
		EvaluationCriteria: []EvaluationCriterion{
			{
				ID:          "empathy",
				Name:        "Empathy & Acknowledgment",
				Description: "Shows understanding of customer frustration",
				Weight:      25,
				GoodExample: "I understand how frustrating this must be for you",
				PoorExample: "Well, it's not our fault",
			},
			{
				ID:          "clarity",
				Name:        "Clear Communication",
				Description: "Explains situation clearly",
				Weight:      25,
				GoodExample: "The shipping carrier experienced delays due to weather",
				PoorExample: "Something happened with shipping",
			},
			{
				ID:          "solution",
				Name:        "Problem Resolution",
				Description: "Offers reasonable solutions",
				Weight:      30,
				GoodExample: "I can offer you expedited shipping at no cost",
				PoorExample: "There's nothing I can do",
			},
			{
				ID:          "professionalism",
				Name:        "Professionalism",
				Description: "Maintains composure and courtesy",
				Weight:      20,
				GoodExample: "I appreciate your patience while we resolve this",
				PoorExample: "Calm down, you're overreacting",
			},
		},
		MaxTurns: 8,
	}
}

// FeedbackConversation is a manager-to-report performance conversation.
func FeedbackConversation() Config {
	return Config{
		Scenario:      "You need to give constructive feedback to a team member whose recent work has missed deadlines and contained errors.",
		LearnerRole:   "Team Manager",
		AIRole:        "Team Member",
		AIName:        "Alex",
		AIPersonality: "Generally good performer who has been going through personal challenges. Defensive at first but open to feedback if delivered respectfully.",
		AIBackground:  "Has been with the team for 2 years with previously strong performance. Recent 3 months have shown decline.",
		Objectives: []string{
			"Open the conversation positively",
			"Use specific examples of the performance issues",
			"Listen to the employee's perspective",
			"Collaboratively create an improvement plan",
		},
		EvaluationCriteria: []EvaluationCriterion{
			{
				ID:          "approach",
				Name:        "Opening Approach",
				Description: "Starts conversation constructively",
				Weight:      20,
				GoodExample: "I wanted to check in with you about how things are going",
				PoorExample: "We need to talk about your performance problems",
			},
			{
				ID:          "specificity",
				Name:        "Specific Feedback",
				Description: "Uses concrete examples",
				Weight:      30,
				GoodExample: "The Johnson report was submitted 2 days late",
				PoorExample: "You've been missing deadlines",
			},
			{
				ID:          "listening",
				Name:        "Active Listening",
				Description: "Shows interest in employee perspective",
				Weight:      25,
				GoodExample: "What factors have been contributing to this?",
				PoorExample: "I don't want to hear excuses",
			},
			{
				ID:          "action",
				Name:        "Action Planning",
				Description: "Creates clear next steps",
				Weight:      25,
				GoodExample: "What support would help you get back on track?",
				PoorExample: "Just do better next time",
			},
		},
		MaxTurns: 10,
	}
}

// SalesDiscovery is a discovery-call qualification exercise.
func SalesDiscovery() Config {
	return Config{
		Scenario:      "You're meeting with a potential client to understand their needs and determine if your product is a good fit.",
		LearnerRole:   "Sales Representative",
		AIRole:        "Potential Client",
		AIName:        "Morgan",
		AIPersonality: "Busy executive, skeptical of salespeople, but genuinely looking for solutions. Values time efficiency.",
		AIBackground:  "Director at a mid-size company exploring options for project management software.",
		Objectives: []string{
			"Build rapport quickly",
			"Ask open-ended discovery questions",
			"Uncover pain points and priorities",
			"Qualify without being pushy",
		},
		EvaluationCriteria: []EvaluationCriterion{
			{
				ID:          "rapport",
				Name:        "Rapport Building",
				Description: "Creates comfortable conversation",
				Weight:      20,
				GoodExample: "I noticed your company just expanded - congratulations!",
				PoorExample: "Let me tell you about our product",
			},
			{
				ID:          "questioning",
				Name:        "Discovery Questions",
				Description: "Asks insightful open-ended questions",
				Weight:      35,
				GoodExample: "What challenges are you facing with your current process?",
				PoorExample: "Do you want to buy our software?",
			},
			{
				ID:          "listening",
				Name:        "Active Listening",
				Description: "Builds on what prospect shares",
				Weight:      25,
				GoodExample: "You mentioned timeline visibility - can you tell me more?",
				PoorExample: "Anyway, our product has great features",
			},
			{
				ID:          "value",
				Name:        "Value Focus",
				Description: "Connects to prospect benefits",
				Weight:      20,
				GoodExample: "Based on what you've shared, you might benefit from...",
				PoorExample: "Everyone loves our reporting features",
			},
		},
		MaxTurns: 10,
	}
}

// Templates returns all prebuilt configs keyed by a stable id.
func Templates() map[string]Config {
	return map[string]Config{
		"difficult-customer":    DifficultCustomer(),
		"feedback-conversation": FeedbackConversation(),
		"sales-discovery":       SalesDiscovery(),
	}
}
