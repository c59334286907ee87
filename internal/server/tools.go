package server

import "github.com/ironsheep/pgm-stego/internal/raster"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

func formatProp(def string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"text", "binary"},
		"description": "Output serialization: text (P2) or binary (P5). Default " + def,
		"default":     def,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "stego_info",
			Description: "Read the header of a PGM raster (P2 or P5) and report its format, dimensions, max-gray value and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the raster file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_embed",
			Description: "Hide the high 4 bits of every secret sample in the low 4 bits of the matching cover sample and write the stego raster. Returns the distortion introduced in the cover.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cover":  stringProp("Absolute path to the cover raster"),
					"secret": stringProp("Absolute path to the secret raster"),
					"output": stringProp("Absolute path for the stego raster"),
					"format": formatProp("binary"),
				},
				"required": []string{"cover", "secret", "output"},
			},
		},
		{
			Name:        "stego_extract",
			Description: "Recover the approximation of a hidden secret (its high nibble, low nibble zeroed) from a stego raster.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stego":  stringProp("Absolute path to the stego raster"),
					"output": stringProp("Absolute path for the recovered raster"),
					"format": formatProp("text"),
				},
				"required": []string{"stego", "output"},
			},
		},
		{
			Name:        "stego_run",
			Description: "Run the full pipeline: read text-form cover and secret, write the binary stego raster, extract the secret from it and write it in text form.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cover":     stringProp("Absolute path to the text-form cover raster"),
					"secret":    stringProp("Absolute path to the text-form secret raster"),
					"stego":     stringProp("Absolute path for the binary stego raster"),
					"recovered": stringProp("Absolute path for the text-form recovered raster"),
				},
				"required": []string{"cover", "secret", "stego", "recovered"},
			},
		},
		{
			Name:        "stego_compare",
			Description: "Compare two rasters of the server's dimensions and report MSE, PSNR (dB), maximum absolute difference and the number of changed samples.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": stringProp("Absolute path to the first raster"),
					"b": stringProp("Absolute path to the second raster"),
				},
				"required": []string{"a", "b"},
			},
		},
		{
			Name:        "stego_preview",
			Description: "Render a raster as a base64-encoded PNG so it can be viewed. With extract=true the hidden secret is rendered instead.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the raster file"),
					"scale": map[string]interface{}{
						"type":             "number",
						"description":      "Optional scale factor (e.g., 0.5 to halve size), at most 8. Default 1.0",
						"exclusiveMinimum": 0,
						"maximum":          raster.MaxScale,
						"default":          1.0,
					},
					"extract": map[string]interface{}{
						"type":        "boolean",
						"description": "Render the secret recovered from the raster instead of the raster itself",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
