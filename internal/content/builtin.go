package content

// Built-in content. An external pack (see Pack) can replace any section.

var enhanceQuestions = []Question{
	{
		Prompt:  "What concept was just discussed in the previous paragraph?",
		Options: []string{"Neural networks", "Machine learning", "Data processing", "Algorithm design"},
		Correct: 0,
	},
	{
		Prompt:  "How might this information connect to your previous knowledge?",
		Options: []string{"It builds on basics", "It contradicts previous ideas", "It introduces new concepts", "It summarizes everything"},
		Correct: 0,
	},
}

var protectQuestions = []Question{
	{
		Prompt:  "Does this claim seem supported by evidence?",
		Options: []string{"Yes, well-supported", "Partially supported", "Unsupported claim", "Need more info"},
		Correct: 3,
	},
	{
		Prompt:  "What potential bias might be present in this source?",
		Options: []string{"Commercial bias", "Confirmation bias", "Selection bias", "No obvious bias"},
		Correct: 0,
	},
}

var focusQuestions = []Question{
	{
		Prompt:  "What is the main point of this section?",
		Options: []string{"Technical details", "Historical context", "Core concept", "Supporting evidence"},
		Correct: 2,
	},
	{
		Prompt:  "Which detail is most important to remember?",
		Options: []string{"First mentioned fact", "Key principle", "Example given", "Statistical data"},
		Correct: 1,
	},
}

var thinkBreakQuestions = []string{
	"Explain the difference between TCP and UDP protocols",
	"What happens during a SQL injection attack?",
	"Describe how blockchain consensus mechanisms work",
	"What's the time complexity of QuickSort in the worst case?",
	"How does garbage collection work in memory management?",
	"Explain the CAP theorem in distributed systems",
	"What are the differences between OAuth 2.0 and JWT?",
	"Describe how DNS resolution works step by step",
}

var interceptPayloads = []InterceptPayload{
	{
		Query:          "Write a binary search implementation for me",
		CannedResponse: "Here is a complete binary search: maintain low and high indices, compare the middle element against the target, and halve the search range until the target is found or the range is empty. The implementation below handles duplicates and returns the leftmost match...",
	},
	{
		Query:          "Summarize this article about climate policy",
		CannedResponse: "The article argues that carbon pricing alone is insufficient and pairs three policy instruments: a rising carbon fee, sector-specific efficiency standards, and targeted public investment in grid infrastructure. The author's central claim is that...",
	},
	{
		Query:          "Debug this null pointer exception in my service",
		CannedResponse: "The exception originates in the request handler: the repository lookup returns nil when the record is missing, and the handler dereferences the result without a presence check. Guard the lookup and return a 404 before touching the fields...",
	},
	{
		Query:          "Explain how transformers work in machine learning",
		CannedResponse: "Transformers process sequences with self-attention: every token computes weighted combinations of all other tokens, so long-range dependencies are captured without recurrence. The architecture stacks attention and feed-forward layers with residual connections...",
	},
}

// chatReplies maps directness level to the canned guided reply.
// Level 5 is a format string receiving the user's message.
var chatReplies = map[int]string{
	1: "That's an interesting question. What do you think might be the key factors to consider? What have you observed about this topic before?",
	2: "Consider breaking this down into smaller parts. What's the first step you'd take? Think about similar problems you've solved.",
	3: "Here's one approach, but first - what's your initial thought? [Then provides some direct info mixed with questions]",
	4: "The answer involves several factors: [provides most of the answer] But what do you think about the implications?",
	5: "Here's a comprehensive answer to %s: [This would be a full, direct response like a standard assistant provides, with complete information and minimal prompting for further thought.]",
}
