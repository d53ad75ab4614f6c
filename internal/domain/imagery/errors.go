package imagery

import (
	"errors"
	"fmt"
)

// ErrExportTimeout export job tidak selesai dalam batas waktu maksimum
var ErrExportTimeout = errors.New("export jobs did not complete before deadline")

// ExportJobError satu job berakhir FAILED/CANCELLED di provider.
// Satu job jelek menggagalkan seluruh batch akuisisi.
type ExportJobError struct {
	JobID  string
	Status JobStatus
}

func (e *ExportJobError) Error() string {
	return fmt.Sprintf("export job %s ended with status %s", e.JobID, e.Status)
}

// DateParseError nama file dari provider tidak mengandung tanggal YYYY-MM-DD
type DateParseError struct {
	Filename string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("no YYYY-MM-DD date found in filename %q", e.Filename)
}
