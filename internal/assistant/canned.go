// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

// Replies are the canned assistant answers.
var Replies = []string{
	"I'm ready to help analyze your plant operations! Please connect the backend system for real-time data analysis.",
	"Nakikita ko ang tanong mo, pero kailangan ko ng koneksyon sa database para sa live data.",
	"System is ready for operations analysis. Please integrate with your data sources for accurate insights.",
	"I'm designed to help with your manufacturing operations. Backend integration pending for live monitoring.",
}

// Placeholders are the rotating input hints.
var Placeholders = []string{
	"Ask about today's GPM...",
	"Bakit walang log si Opscrew kanina?",
	"Show me Coal Yard status...",
	"Bakit low ang pressure ng Boiler B?",
	"Tanong ka lang, kahit Tagalog!",
	"Check chemical inventory levels...",
}

// Suggestions are the quick prompts offered under the input.
var Suggestions = []string{
	"Show today's summary",
	"Check alerts",
}
