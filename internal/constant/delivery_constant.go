package constant

// FollowUpPromptPriority is the priority assigned to user prompts
// synthesized from facilitator follow-up interactions. It is the highest
// priority in use, so follow-ups jump the whole queue.
const FollowUpPromptPriority = 100

// DefaultUserPromptPriority is used when a facilitator queues a question
// directly without urgency.
const DefaultUserPromptPriority = 0
