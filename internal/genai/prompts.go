package genai

// Built-in prompt templates. Operators can override any of them via the
// prompts section of the config; the template fields are documented there.

const defaultSummaryPrompt = `You are preparing research notes for personalized LinkedIn outreach.

Founder profile:
{{.ProfileJSON}}

Company:
{{.CompanyJSON}}

{{.News}}

Write a concise, fact-dense brief (2-3 sentences) covering the founder's
journey and the company's value proposition. Surface one specific, non-obvious
detail that would work as a conversation hook. No preamble, no markdown, just
the brief.`

const defaultConnectionPrompt = `Write a LinkedIn connection request to {{.FirstName}}, who leads {{.Company}}.

Research brief:
--- START BRIEF ---
{{.Summary}}
--- END BRIEF ---

Rules:
- Strictly under {{.Limit}} characters.
- Open with "Hi {{.FirstName}},".
- Reference ONE specific detail from the brief; no generic praise.
- Close with a simple ask to connect.
- Professional, warm, genuine. No hashtags, no emoji.

Output only the message text.`

const defaultJobInquiryPrompt = `Write a LinkedIn message ({{.Min}}-{{.Max}} characters) to {{.FirstName}} of {{.Company}}. Assume you are already connected. The goal is to express genuine interest in the company and ask about potential roles.

Sender's background:
{{.TechStack}}

Research brief:
--- START BRIEF ---
{{.Summary}}
--- END BRIEF ---

Rules:
- Open with "Hi {{.FirstName}},".
- Reference a specific aspect of the company's work from the brief and say why
  it interests you.
- Introduce the sender's skills from the background above and tie them to the
  company's goals.
- Ask politely how best to explore relevant openings; never demand a role.
- Professional and enthusiastic, not a mass email.

Output only the message text.`

const defaultTechStackPrompt = `Summarize the candidate's technical background from the resume below into at most three short lines:

Technical skills: <comma-separated list>
Recent role: <title> at <company>
Education: <degree> from <institution>

Omit a line when the resume has no data for it. Output nothing else.

Resume:
{{.Resume}}`
