// Package printing renders greeting cards to print-ready single-page PDFs.
//
// Page placement is computed once by PlanLayout and drawn by one of two
// engines:
//   - FpdfRenderer writes the PDF in-process with go-pdf/fpdf (default)
//   - ChromiumRenderer prints an HTML rendition of the same layout through
//     headless Chrome
//
// Example usage:
//
//	renderer, err := printing.NewRenderer(cfg.PDF, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	pdf, err := renderer.Render(ctx, c, card.PaperA5)
package printing
