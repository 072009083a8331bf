package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

type BufferedManagerTestSuite struct {
	suite.Suite
	manager *BufferedManager
	path    string
}

func (ds *BufferedManagerTestSuite) SetupTest() {
	ds.path = filepath.Join(ds.T().TempDir(), "test.db")

	manager, err := NewBufferedManager(ds.path)
	ds.Require().NoError(err)
	ds.manager = manager
}

func (ds *BufferedManagerTestSuite) TearDownTest() {
	ds.Assert().NoError(ds.manager.Close())
}

func (ds *BufferedManagerTestSuite) TestAllocatePageStartsAfterMetadataBlock() {
	id, err := ds.manager.AllocatePage()

	ds.Require().NoError(err)
	ds.Assert().Equal(page.ID(1), id)
	ds.Assert().NotEqual(page.InvalidID, id)
}

func (ds *BufferedManagerTestSuite) TestDeallocatedPageIsReused() {
	first, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)

	ds.manager.DeallocatePage(first)

	reused, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.Assert().Equal(first, reused)
}

func (ds *BufferedManagerTestSuite) TestWriteThenReadRoundTrips() {
	id, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)

	written := make([]byte, page.Size)
	copy(written, "hello, page")
	ds.Require().NoError(ds.manager.WritePage(id, written))

	read := make([]byte, page.Size)
	ds.Require().NoError(ds.manager.ReadPage(id, read))
	ds.Assert().Equal(written, read)
}

func (ds *BufferedManagerTestSuite) TestFreelistSurvivesReopen() {
	first, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.manager.DeallocatePage(first)

	ds.Require().NoError(ds.manager.Close())

	reopened, err := NewBufferedManager(ds.path)
	ds.Require().NoError(err)
	ds.manager = reopened

	reused, err := ds.manager.AllocatePage()
	ds.Require().NoError(err)
	ds.Assert().Equal(first, reused)
}

func (ds *BufferedManagerTestSuite) TestFreshFileHasNoDeallocatedPages() {
	fresh, err := NewBufferedManager(filepath.Join(ds.T().TempDir(), "fresh.db"))
	ds.Require().NoError(err)
	defer fresh.Close()

	ds.Assert().Empty(fresh.freelist.deallocated)
	ds.Assert().Equal(page.ID(0), fresh.freelist.maxAllocated)
}

func TestBufferedManager(t *testing.T) {
	suite.Run(t, new(BufferedManagerTestSuite))
}
