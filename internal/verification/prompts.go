package verification

const contentCheckInstruction = "You are a content analyzer. Respond only with 'YES' or 'NO'."

const (
	documentCheckPrompt = "Does this image contain a clear, well-defined handwritten signature or seal that is complete and unobstructed? The signature must be clearly visible and not partially cut off or blurred. Respond only with 'YES' or 'NO'."
	sampleCheckPrompt   = "Is this image a clear, high-quality sample of a complete handwritten signature with good contrast against its background? The signature must not be blurred, partially cut off, or obscured. Respond only with 'YES' or 'NO'."
	reportCheckPrompt   = "Does this image contain any visible handwritten or drawn mark that could be interpreted as a signature or seal? Respond only with 'YES' or 'NO'."
)

const forensicInstruction = `You are an expert forensic document analyst specializing in signature verification. Compare the signature visible in the first image (the document) with the second image (the authentic sample) using these strict criteria:
1. Line quality and flow
2. Stroke characteristics and pressure points
3. Entry and exit points
4. Size and proportion consistency
5. Angle and slant patterns
6. Formation of specific characters
7. Spacing between elements

Provide extremely careful analysis. Set confidence below 70% if there are any doubts. Only provide 90%+ confidence for near-perfect matches or clear forgeries with obvious inconsistencies.

Do not output anything except a single line of text formatted exactly as: VERDICT: [AUTHENTIC or FORGED], CONFIDENCE: [X]%`

const comparisonPrompt = "Compare the signature on the document (Image 1) against the sample (Image 2). Provide the VERDICT and CONFIDENCE SCORE as requested."

const (
	reportInstruction = "You are a professional forensic handwriting expert. Analyze the signature visible in the provided image (the document). Focus only on observable characteristics and write a concise single-paragraph report (max 120 words)."
	reportPrompt      = "Analyze the signature in this document and provide a forensic summary report."
)

// User-facing texts.
const (
	documentRejected = "The uploaded document does not contain a clear, well-defined signature."
	sampleRejected   = "The sample image does not appear to be a clear, high-quality signature sample."
	reportRejected   = "The uploaded file does not clearly show a document with a signature."

	analysisFailed     = "Failed to run AI analysis."
	reportFailed       = "Failed to generate report."
	persistenceWarning = "Warning: failed to save scan history."
)

// Progress texts pushed while a run advances.
const (
	progressValidatingQuality = "Validating image quality..."
	progressCheckingDocument  = "Validating document for signature presence..."
	progressCheckingSample    = "Validating sample signature content..."
	progressComparing         = "AI is analyzing features and handwriting characteristics..."
	progressWritingReport     = "AI is writing the detailed report..."
)
