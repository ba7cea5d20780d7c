package mcpserver

// RuleReference describes how note-set rules resolve to notes and how
// review priority is computed. Exposed as an MCP resource so LLM
// consumers can reason about queue contents.
const RuleReference = `# Raido Note Set Rule Reference

A note set selects notes from the vault by rules and keeps a review queue
over the selection.

## Note format

` + "```" + `markdown
---
title: Human-readable title         # OPTIONAL – falls back to the first H1
tags:                               # OPTIONAL – YAML list; used by tag rules
  - tag-one
reviewed: 2025-01-15                # Set by mark_reviewed (yyyy-mm-dd)
review-frequency: normal            # high | normal | low | ignore
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Tags** match notes carrying any (or all, depending on the join type)
   of the listed tags. Tags are written with or without a leading ` + "`" + `#` + "`" + `.
2. **Folders** match notes anywhere under the listed directories.
3. **Recency** (created/modified in the last N days) narrows the selection
   after tag and folder rules resolve.
4. **Custom query** replaces the built rules entirely. Syntax:
   ` + "`" + `#tag` + "`" + `, quoted folder paths, ` + "`" + `and` + "`" + `, ` + "`" + `or` + "`" + `, parentheses.
   Example: ` + "`" + `(#book or #article) and "inbox"` + "`" + `.
5. A note set with no rules at all matches every note in the vault.

## Review priority

When frequency weighting is on, the queue orders notes by
` + "`" + `rank² × days-since-review` + "`" + ` (highest first), where rank is 5 for high,
4 for notes without a frequency, 3 for normal, and 2 for low. Notes marked
` + "`" + `ignore` + "`" + ` never enter a queue. When weighting is off, the least recently
reviewed notes come first, never-reviewed notes before all others.

## Queue lifecycle

Reviewing or skipping a note removes it from the queue. When the queue
runs out, it is rebuilt from the rules, starting a new review cycle.
`
