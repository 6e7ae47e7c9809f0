package writer

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
)

const STRLEN = 20

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func convertFromHdf5String(b [STRLEN]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

// table is an extensible one-dimensional dataset of compound rows.
type table struct {
	dset *hdf5.Dataset
	rows int
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*table, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{4096}
	if err := plist.SetChunk(chunks); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if compression > 0 {
		if err := plist.SetDeflate(compression); err != nil {
			return nil, &ErrCreateTable{TableName: name, Err: err}
		}
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return &table{dset: dset}, nil
}

func writeEntryToTable[T any](t *table, data T) error {
	array := []T{data}
	return writeArrayToTable(t, &array)
}

// writeArrayToTable appends data at the end of the table.
func writeArrayToTable[T any](t *table, data *[]T) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating memory space: %w", err)
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(t.rows)
	newsize := []uint{rowsInFile + length}
	if err := t.dset.Resize(newsize); err != nil {
		return fmt.Errorf("error extending table: %w", err)
	}
	filespace := t.dset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting rows: %w", err)
	}

	if err := t.dset.WriteSubset(data, dataspace, filespace); err != nil {
		return fmt.Errorf("error writing rows: %w", err)
	}
	t.rows += int(length)
	return nil
}

func (t *table) Close() error {
	return t.dset.Close()
}

// readTable reads all rows of a dataset.
func readTable[T any](file *hdf5.File, path string) ([]T, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %q: %w", path, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("error reading size of %q: %w", path, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("dataset %q is not a table", path)
	}

	// The array MUST be allocated before reading
	rows := make([]T, dims[0])
	if len(rows) == 0 {
		return rows, nil
	}
	if err := dset.Read(&rows); err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return rows, nil
}
