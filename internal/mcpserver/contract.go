package mcpserver

// PromptFormatContract describes the conventions LLM consumers should
// follow when creating prompts through the MCP tools.
const PromptFormatContract = `# Promptdeck Prompt Format

Prompts created through the MCP tools should follow these conventions.

## Structure

- **Title**: short, descriptive, at most six words. It is the primary
  display name in the sidebar and search results.
- **Content**: the full prompt text in plain Markdown. State the role,
  the task, the constraints, and the expected output format in that order.

## Rules

1. One prompt per tool call; do not bundle several prompts into one.
2. Content is free-form text. No frontmatter, no metadata headers — titles
   live in the title field, not in the content.
3. Prefer explicit placeholders in curly braces for variable parts, e.g.
   ` + "`{input_text}`" + ` or ` + "`{target_language}`" + `.
4. Keep reusable prompts self-contained: they should make sense without
   the conversation that produced them.
5. Encoding is UTF-8. Any language is fine for the content; titles should
   match the content's language.

## Example

Title: ` + "`Summarize meeting notes`" + `

Content:

` + "```" + `
You are an experienced executive assistant.

Summarize the following meeting notes into at most five bullet points,
each starting with the responsible person's name.

{meeting_notes}
` + "```" + `
`
