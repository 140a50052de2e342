// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package roster moves school records in and out of Excel workbooks.

ImportStudents reads the first sheet of an xlsx file into the student
repository. Headers are matched loosely ("Admission No", "admission_no" and
"ADMNO" all bind to the admission number) and hand-typed dates such as
3/6/2024 are normalized to YYYY-MM-DD. Rows that fail validation are
reported and skipped; the valid ones are saved in one upsert.

WriteWorkbook exports a repository.Dataset with one sheet per replicated
collection. The Students sheet uses StudentHeader, which ImportStudents
understands, so an export can be edited offline and imported back.
*/
package roster
