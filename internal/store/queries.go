package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, kind, controller, status, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryFinishRun = `
		UPDATE runs SET status = ?, error = ?, finished_at = ?
		WHERE id = ?`

	querySetRunController = `UPDATE runs SET controller = ? WHERE id = ?`
)

// Run resource queries
const (
	queryInsertRunResource = `
		INSERT INTO run_resources (run_id, kind, resource_id, url, created_at)
		VALUES (?, ?, ?, ?, ?)`
)
