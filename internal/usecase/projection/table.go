package projection

// Table shapes rows for tabular output. The header is the key set of the first
// row; a later row missing a key gets "" in that column and keys the first row
// lacks are dropped.
func Table(rows []Row) (header []string, records [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	header = rows[0].Keys()
	records = make([][]string, len(rows))
	for i, r := range rows {
		m := r.Map()
		rec := make([]string, len(header))
		for j, key := range header {
			rec[j] = m[key]
		}
		records[i] = rec
	}
	return header, records
}
