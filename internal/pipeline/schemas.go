package pipeline

import "google.golang.org/genai"

// StringListSchema is a JSON array of strings.
var StringListSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

// ClusterSchema is the model answer of the clustering prompt.
var ClusterSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"topic":    {Type: genai.TypeString, Description: "A descriptive name of the topic"},
			"keywords": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"topic", "keywords"},
	},
}

// AdCopySchema is the model answer of the ad suggestion prompt.
var AdCopySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"headlines":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"descriptions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"headlines", "descriptions"},
	},
}
