package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createListSubjectsTool returns the list_subjects tool definition
func createListSubjectsTool() mcp.Tool {
	return mcp.NewTool("list_subjects",
		mcp.WithDescription("List the subjects doceo can answer questions about, with each subject's index status"),
	)
}

// createIndexStatusTool returns the index_status tool definition
func createIndexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Report the index built for one subject: source document, pages, chunks, embedding model"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Exact subject name from list_subjects"),
		),
	)
}

// createIngestDocumentTool returns the ingest_document tool definition
func createIngestDocumentTool() mcp.Tool {
	return mcp.NewTool("ingest_document",
		mcp.WithDescription("Index a PDF, markdown, or HTML file for a subject, replacing the subject's previous document"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Exact subject name from list_subjects"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document on the server's filesystem"),
		),
	)
}

// createAskSubjectTool returns the ask_subject tool definition
func createAskSubjectTool() mcp.Tool {
	return mcp.NewTool("ask_subject",
		mcp.WithDescription("Answer a question using only the subject's ingested document, with page citations"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Exact subject name from list_subjects"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
}
