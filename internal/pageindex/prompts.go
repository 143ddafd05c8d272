package pageindex

// Prompt templates for the structure pipeline. Every prompt that expects a
// structured reply pins the exact JSON shape; replies are still routed
// through the tolerant extractor because models decorate output anyway.

const tocDetectPrompt = `You are a document analyzer. Your task is to detect if the given text contains a table of contents (TOC).

Text to analyze:
%s

IMPORTANT NOTES:
- Abstract, summary, notation list, figure list, table list, bibliography, index are NOT table of contents
- A table of contents typically contains chapter/section titles with page numbers
- Look for phrases like "Contents", "Table of Contents", "Chapters", "Sections"

Return ONLY a valid JSON object in this exact format (no markdown, no explanations):
{
    "thinking": "Brief explanation of your analysis",
    "toc_detected": "yes" or "no"
}`

const tocExtractPrompt = `Your job is to extract the full table of contents from the given text, replicating the original section titles and page numbers faithfully.

Text:
%s

Directly return the full table of contents content. Do not include any explanation or any other text.`

const tocContinuePrompt = `Please continue the table of contents extraction from exactly where the previous response stopped. Do not repeat anything already returned and do not include any other text.`

const structureContinuePrompt = `Please continue the structure extraction from exactly where the previous response stopped. Do not repeat anything already returned and do not include any other text.`

const tocTransformPrompt = `You are given a table of contents extracted from a document. Transform it into the JSON format below, keeping the original order of entries.

Table of contents:
%s

The structure field encodes the hierarchy as a dotted code: top-level sections are "1", "2", ...; the second subsection of the first section is "1.2"; and so on.

Return ONLY a valid JSON object in this exact format:
{
    "table_of_contents": [
        {
            "structure": "<structure code, e.g. 1.2.3>",
            "title": "<section title>",
            "page": <page number given in the table of contents, or null if none>
        }
    ],
    "page_index_given_in_toc": "yes" or "no"
}`

const tocMatchPrompt = `You are given section titles from a table of contents, and the text of several document pages. Each page is wrapped in <physical_index_X> tags giving its physical page number.

Section titles:
%s

Pages:
%s

For each section whose content STARTS within the given pages, report the physical page where it starts.

Return ONLY a valid JSON object in this exact format:
{
    "results": [
        {
            "title": "<section title exactly as given>",
            "physical_index": "<physical_index_X>"
        }
    ]
}`

const tocVerifyPrompt = `Your job is to check if a section starts on the given page. The beginning of the section is usually marked by its title; matching the title is enough, the full section content does not need to fit on this page.

Section title: %s

Page text (wrapped in physical index tags):
%s

Reply with "yes" if the section starts in this page, "no" otherwise. If yes, also report whether the section title is the first content on the page.

Return ONLY a valid JSON object in this exact format:
{
    "thinking": "Brief explanation of your analysis",
    "answer": "yes" or "no",
    "appear_start": "yes" or "no"
}`

const tocFixPrompt = `A section was expected on one page but was not found there. You are given the section title and the text of nearby pages, each wrapped in <physical_index_X> tags giving its physical page number.

Section title: %s

Pages:
%s

Find the physical page where this section starts.

Return ONLY a valid JSON object in this exact format:
{
    "physical_index": "<physical_index_X>" or null if the section does not start in these pages
}`

const partStructurePrompt = `You are an expert in extracting the hierarchical structure of a document. You are given a group of consecutive pages, each wrapped in <physical_index_X> tags giving its physical page number.

Pages:
%s

Previously extracted sections (for context, do not repeat them):
%s

Extract the sections that START within the given pages. The structure field encodes the hierarchy as a dotted code continuing the previous numbering: top-level sections are "1", "2", ...; the second subsection of the first section is "1.2".

Return ONLY a valid JSON object in this exact format:
{
    "table_of_contents": [
        {
            "structure": "<structure code>",
            "title": "<section title>",
            "physical_index": "<physical_index_X>"
        }
    ]
}`

const nodeSummaryPrompt = `You are given a part of a document, your task is to generate a description of the partial document about what are main points covered in the partial document.

Partial Document Text: %s

Directly return the description, do not include any other text.`

const docDescriptionPrompt = `You are an expert in generating descriptions for a document.
You are given a structure of a document. Your task is to generate a one-sentence description for the document, which makes it easy to distinguish the document from other documents.

Document Structure: %s

Directly return the description, do not include any other text.`
