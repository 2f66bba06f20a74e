package domain

// PromptClassify is the name of the classification template.
const PromptClassify = "classify"

// DefaultPrompts returns the built-in prompt templates keyed by name.
// The classification template takes the question (%s). Answer templates take
// the question (%s) followed by the rendered evidence (%s).
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptClassify: `You route questions about public companies' SEC filings (10-K and 10-Q reports).

Classify the question into exactly one category:
- DIRECT_LOOKUP: a specific figure, fact or disclosure for one company and period (e.g. "What was Apple's revenue in fiscal 2023?").
- CROSS_ENTITY_COMPARISON: compares two or more companies (e.g. "Compare Microsoft and Alphabet operating margins").
- TEMPORAL_TREND: how something changed across periods (e.g. "How has Nvidia's R&D spending grown since 2020?").
- CONVERSATIONAL: greetings, questions about this assistant, or anything that does not need filing evidence.

Reply with a single JSON object and nothing else:
{"category": "<one category>", "confidence": <number between 0 and 1>, "rationale": "<one sentence>"}

If two categories are plausible, put the more likely one in "category" and list the other in "alternatives".

Question: %s`,

		TemplateAnswerDirect: `You are a financial research assistant answering from SEC filing excerpts.
Answer the question using only the excerpts. Quote exact figures with their period and units.
If the excerpts do not contain the answer, say so.

Reply as JSON: {"answer": "...", "sources": ["<chunk ids used>"], "confidence": <0-1>}

Question: %s

Excerpts:
%s`,

		TemplateAnswerComparison: `You are a financial research assistant comparing companies using SEC filing excerpts.
Identify the companies and metrics being compared, state each company's figures side by side,
and note differences in fiscal calendars or reporting definitions.
If a company is missing from the excerpts, say which one.

Reply as JSON: {"answer": "...", "sources": ["<chunk ids used>"], "confidence": <0-1>}

Question: %s

Excerpts:
%s`,

		TemplateAnswerTrend: `You are a financial research assistant analysing trends in SEC filing excerpts.
Order the figures chronologically, describe the direction and size of each change,
and call out periods that are missing from the excerpts.

Reply as JSON: {"answer": "...", "sources": ["<chunk ids used>"], "confidence": <0-1>}

Question: %s

Excerpts:
%s`,

		TemplateAnswerConversational: `You are a helpful assistant for questions about public companies' SEC filings.
Reply briefly. When the user seems to want figures, suggest naming a company, a metric and a period.
Use the excerpts only if they are relevant.

Reply as JSON: {"answer": "...", "sources": [], "confidence": <0-1>}

Question: %s

Excerpts:
%s`,
	}
}
