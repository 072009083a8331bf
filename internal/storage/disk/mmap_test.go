package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

type MMapManagerTestSuite struct {
	suite.Suite
	manager *MMapManager
	path    string
}

func (ds *MMapManagerTestSuite) SetupTest() {
	ds.path = filepath.Join(ds.T().TempDir(), "test.db")

	manager, err := NewMMapManager(ds.path)
	ds.Require().NoError(err)
	ds.manager = manager
}

func (ds *MMapManagerTestSuite) TearDownTest() {
	ds.Assert().NoError(ds.manager.Close())
}

func (ds *MMapManagerTestSuite) TestAllocatePageStartsAfterMetadataBlock() {
	id, err := ds.manager.AllocatePage()

	ds.Require().NoError(err)
	ds.Assert().Equal(page.ID(1), id)
	ds.Assert().NotEqual(page.InvalidID, id)
}

func (ds *MMapManagerTestSuite) TestDeallocatedPageIsReused() {
	first, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)

	ds.manager.DeallocatePage(first)

	reused, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.Assert().Equal(first, reused)
}

func (ds *MMapManagerTestSuite) TestWriteThenReadRoundTrips() {
	id, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)

	written := make([]byte, page.Size)
	copy(written, "hello, mapped page")
	ds.Require().NoError(ds.manager.WritePage(id, written))

	read := make([]byte, page.Size)
	ds.Require().NoError(ds.manager.ReadPage(id, read))
	ds.Assert().Equal(written, read)
}

func (ds *MMapManagerTestSuite) TestFreelistSurvivesReopen() {
	first, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.manager.DeallocatePage(first)

	ds.Require().NoError(ds.manager.Close())

	reopened, err := NewMMapManager(ds.path)
	ds.Require().NoError(err)
	ds.manager = reopened

	reused, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.Assert().Equal(first, reused)
}

func (ds *MMapManagerTestSuite) TestReadPastCurrentMappingGrowsFile() {
	// page id far beyond the initial mmapGrowth window; ReadPage must grow
	// and remap rather than index out of range.
	far := page.ID(mmapGrowth * 3)

	read := make([]byte, page.Size)
	ds.Require().NoError(ds.manager.ReadPage(far, read))

	zero := make([]byte, page.Size)
	ds.Assert().Equal(zero, read)

	written := make([]byte, page.Size)
	copy(written, "grown region")
	ds.Require().NoError(ds.manager.WritePage(far, written))

	reread := make([]byte, page.Size)
	ds.Require().NoError(ds.manager.ReadPage(far, reread))
	ds.Assert().Equal(written, reread)
}

func TestMMapManager(t *testing.T) {
	suite.Run(t, new(MMapManagerTestSuite))
}
