package pyast

// Visitor is the double-dispatch interface every node's Accept method calls
// into. The analysis pipeline and the stub generator's rewrite passes
// dispatch on node type with type switches and do not implement it.
type Visitor interface {
	VisitModule(n *Module)
	VisitImportStatement(n *ImportStatement)
	VisitImportFromStatement(n *ImportFromStatement)
	VisitClassDef(n *ClassDef)
	VisitFunctionDef(n *FunctionDef)
	VisitAssignStatement(n *AssignStatement)
	VisitAnnAssignStatement(n *AnnAssignStatement)
	VisitAugAssignStatement(n *AugAssignStatement)
	VisitIfStatement(n *IfStatement)
	VisitForStatement(n *ForStatement)
	VisitWhileStatement(n *WhileStatement)
	VisitWithStatement(n *WithStatement)
	VisitTryStatement(n *TryStatement)
	VisitReturnStatement(n *ReturnStatement)
	VisitExprStatement(n *ExprStatement)
	VisitPassStatement(n *PassStatement)
	VisitAssertStatement(n *AssertStatement)
	VisitIdentifier(n *Identifier)
	VisitAttribute(n *Attribute)
	VisitCall(n *Call)
	VisitConstant(n *Constant)
	VisitTupleExpr(n *TupleExpr)
	VisitListExpr(n *ListExpr)
	VisitDictExpr(n *DictExpr)
	VisitBinOp(n *BinOp)
	VisitUnaryOp(n *UnaryOp)
	VisitCompareExpr(n *CompareExpr)
	VisitBoolOp(n *BoolOp)
	VisitIsInstanceExpr(n *IsInstanceExpr)
	VisitSubscriptExpr(n *SubscriptExpr)
	VisitLambdaExpr(n *LambdaExpr)
	VisitStarredExpr(n *StarredExpr)
}

// BaseVisitor gives passes that only care about a handful of node kinds a
// no-op default for everything else, so each pass stays small and focused
// instead of growing into one monolithic visitor.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(n *Module)                             {}
func (BaseVisitor) VisitImportStatement(n *ImportStatement)             {}
func (BaseVisitor) VisitImportFromStatement(n *ImportFromStatement)     {}
func (BaseVisitor) VisitClassDef(n *ClassDef)                           {}
func (BaseVisitor) VisitFunctionDef(n *FunctionDef)                     {}
func (BaseVisitor) VisitAssignStatement(n *AssignStatement)             {}
func (BaseVisitor) VisitAnnAssignStatement(n *AnnAssignStatement)       {}
func (BaseVisitor) VisitAugAssignStatement(n *AugAssignStatement)       {}
func (BaseVisitor) VisitIfStatement(n *IfStatement)                     {}
func (BaseVisitor) VisitForStatement(n *ForStatement)                   {}
func (BaseVisitor) VisitWhileStatement(n *WhileStatement)               {}
func (BaseVisitor) VisitWithStatement(n *WithStatement)                 {}
func (BaseVisitor) VisitTryStatement(n *TryStatement)                   {}
func (BaseVisitor) VisitReturnStatement(n *ReturnStatement)             {}
func (BaseVisitor) VisitExprStatement(n *ExprStatement)                 {}
func (BaseVisitor) VisitPassStatement(n *PassStatement)                 {}
func (BaseVisitor) VisitAssertStatement(n *AssertStatement)             {}
func (BaseVisitor) VisitIdentifier(n *Identifier)                       {}
func (BaseVisitor) VisitAttribute(n *Attribute)                         {}
func (BaseVisitor) VisitCall(n *Call)                                   {}
func (BaseVisitor) VisitConstant(n *Constant)                           {}
func (BaseVisitor) VisitTupleExpr(n *TupleExpr)                         {}
func (BaseVisitor) VisitListExpr(n *ListExpr)                           {}
func (BaseVisitor) VisitDictExpr(n *DictExpr)                           {}
func (BaseVisitor) VisitBinOp(n *BinOp)                                 {}
func (BaseVisitor) VisitUnaryOp(n *UnaryOp)                             {}
func (BaseVisitor) VisitCompareExpr(n *CompareExpr)                     {}
func (BaseVisitor) VisitBoolOp(n *BoolOp)                               {}
func (BaseVisitor) VisitIsInstanceExpr(n *IsInstanceExpr)               {}
func (BaseVisitor) VisitSubscriptExpr(n *SubscriptExpr)                 {}
func (BaseVisitor) VisitLambdaExpr(n *LambdaExpr)                       {}
func (BaseVisitor) VisitStarredExpr(n *StarredExpr)                     {}

// WalkStatements visits each top-level statement in order; it does not
// recurse into nested bodies, leaving that to the caller.
func WalkStatements(stmts []Statement, v Visitor) {
	for _, s := range stmts {
		s.Accept(v)
	}
}
