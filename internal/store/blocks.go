package store

import (
	"fmt"

	"github.com/mshears713/Research-Body/internal/mission"
)

// richText is one text span inside a block
type richText struct {
	Type string   `json:"type"`
	Text textSpan `json:"text"`
}

type textSpan struct {
	Content string `json:"content"`
}

type blockContent struct {
	RichText []richText `json:"rich_text"`
}

// Block is one Notion content block. Exactly one of the typed fields is
// set, matching the block's Type.
type Block struct {
	Object    string        `json:"object"`
	Type      string        `json:"type"`
	Paragraph *blockContent `json:"paragraph,omitempty"`
	Heading   *blockContent `json:"heading_2,omitempty"`
	Bullet    *blockContent `json:"bulleted_list_item,omitempty"`
}

func newContent(text string) *blockContent {
	return &blockContent{
		RichText: []richText{{Type: "text", Text: textSpan{Content: text}}},
	}
}

// ParagraphBlock builds a paragraph block
func ParagraphBlock(text string) Block {
	return Block{Object: "block", Type: "paragraph", Paragraph: newContent(text)}
}

// HeadingBlock builds a second-level heading block
func HeadingBlock(text string) Block {
	return Block{Object: "block", Type: "heading_2", Heading: newContent(text)}
}

// BulletBlock builds a bulleted list item block
func BulletBlock(text string) Block {
	return Block{Object: "block", Type: "bulleted_list_item", Bullet: newContent(text)}
}

// ChunkText splits text into rune-boundary chunks of at most size characters
func ChunkText(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// MissionBlocks renders a mission result as Notion blocks: an overview
// paragraph, then one heading + key point bullets + text paragraphs per
// summary, capped at the per-page block limit.
func MissionBlocks(result *mission.Result) []Block {
	blocks := []Block{
		ParagraphBlock(fmt.Sprintf("Mission %s: %d sources, %d summaries. Composite score %.2f.",
			result.MissionID, len(result.Documents), len(result.Summaries), result.Scores.Composite)),
	}

	for _, summary := range result.Summaries {
		if len(blocks) >= maxBlocksPerPage {
			break
		}

		title := summary.Title
		if title == "" {
			title = summary.SourceURL
		}
		blocks = append(blocks, HeadingBlock(title))

		for _, point := range summary.KeyPoints {
			if len(blocks) >= maxBlocksPerPage {
				break
			}
			blocks = append(blocks, BulletBlock(point))
		}

		for _, chunk := range ChunkText(summary.Text, maxBlockTextLen) {
			if len(blocks) >= maxBlocksPerPage {
				break
			}
			blocks = append(blocks, ParagraphBlock(chunk))
		}
	}

	if len(blocks) > maxBlocksPerPage {
		blocks = blocks[:maxBlocksPerPage]
	}
	return blocks
}
